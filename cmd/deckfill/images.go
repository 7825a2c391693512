package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Find and store images for image placeholders",
	Long: `Find and store images for image placeholders. Each command that stores
an image prints the asset key to use as the placeholder's value.`,
}

var imagesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the web for images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		results, err := client.SearchImages(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No images found.")
			return nil
		}
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), r.Original)
		}
		return nil
	},
}

var imagesScrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "List the images found on a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		urls, err := client.ScrapeImages(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No images found on that page.")
			return nil
		}
		for _, u := range urls {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

var imagesUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a local image and print its asset key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", args[0], err)
		}
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		key, err := client.UploadAsset(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var imagesFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Copy an image from a URL into storage and print its asset key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		key, err := client.UploadAssetFromURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var imagesViewCmd = &cobra.Command{
	Use:   "view <key>",
	Short: "Print a temporary URL for viewing a stored image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		u, err := client.AssetViewURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	imagesCmd.AddCommand(imagesSearchCmd)
	imagesCmd.AddCommand(imagesScrapeCmd)
	imagesCmd.AddCommand(imagesUploadCmd)
	imagesCmd.AddCommand(imagesFetchCmd)
	imagesCmd.AddCommand(imagesViewCmd)
}
