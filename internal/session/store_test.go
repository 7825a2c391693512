package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() template.Template {
	return template.Template{
		ID:   "7",
		Name: "Listing",
		Placeholders: []template.Placeholder{
			{Name: "client_name", Kind: template.KindText},
			{Name: "logo", Kind: template.KindImage},
			{Name: "nearby_amenities", Kind: template.KindList},
			{Name: "tier", Kind: template.KindChoice, Options: []string{"Gold", "Silver"}},
		},
	}
}

func TestStore_InitializeFresh(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	s := NewStore(kv.Scoped(backing, "tab-1"))

	require.NoError(t, s.Initialize(ctx, sampleTemplate()))
	require.False(t, s.Restored())
	require.False(t, s.Dirty())

	vals := s.Values()
	require.Len(t, vals, 4)
	require.True(t, vals["nearby_amenities"].IsList())
	require.Empty(t, vals["nearby_amenities"].Items())
	require.Equal(t, "", vals["client_name"].String())

	// Nothing is written until the first change.
	keys, _ := backing.Keys(ctx)
	require.Empty(t, keys)
	require.False(t, s.IsComplete())
	require.Equal(t, []string{"client_name", "logo", "nearby_amenities", "tier"}, s.Missing())
}

func TestStore_SetValuePersists(t *testing.T) {
	ctx := context.Background()
	store := kv.Scoped(kv.NewMemoryStore(), "tab-1")
	s := NewStore(store)
	require.NoError(t, s.Initialize(ctx, sampleTemplate()))

	require.NoError(t, s.SetValue(ctx, "client_name", template.Text("Acme")))
	require.True(t, s.Dirty())

	raw, err := store.Get(ctx, workflowKey)
	require.NoError(t, err)

	var sess Session
	require.NoError(t, json.Unmarshal(raw, &sess))
	require.Equal(t, template.ID("7"), sess.TemplateID)
	require.True(t, sess.Dirty)
	require.Equal(t, "Acme", sess.Values["client_name"].String())
	require.Len(t, sess.Values, 4)
}

func TestStore_SetValueValidation(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemoryStore())

	require.ErrorIs(t, s.SetValue(ctx, "client_name", template.Text("x")), ErrNotInitialized)

	require.NoError(t, s.Initialize(ctx, sampleTemplate()))
	require.ErrorIs(t, s.SetValue(ctx, "nope", template.Text("x")), ErrUnknownPlaceholder)
	require.ErrorIs(t, s.SetValue(ctx, "nearby_amenities", template.Text("Park")), ErrKindMismatch)
	require.ErrorIs(t, s.SetValue(ctx, "client_name", template.List("a")), ErrKindMismatch)
	require.False(t, s.Dirty())
}

func TestStore_RestoreSameTemplate(t *testing.T) {
	ctx := context.Background()
	backing := kv.Scoped(kv.NewMemoryStore(), "tab-1")

	first := NewStore(backing)
	require.NoError(t, first.Initialize(ctx, sampleTemplate()))
	require.NoError(t, first.SetValue(ctx, "client_name", template.Text("Acme")))
	require.NoError(t, first.SetValue(ctx, "nearby_amenities", template.List("Park", "Gym")))

	// Same tab, new process.
	second := NewStore(backing)
	require.NoError(t, second.Initialize(ctx, sampleTemplate()))
	require.True(t, second.Restored())
	require.False(t, second.Dirty())

	v, ok := second.Value("client_name")
	require.True(t, ok)
	require.Equal(t, "Acme", v.String())
	amenities, _ := second.Value("nearby_amenities")
	require.Equal(t, []string{"Park", "Gym"}, amenities.Items())
}

func TestStore_RestoreFillsMissingPlaceholders(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	raw := `{"templateId":"7","values":{"client_name":"Acme","logo":["wrong shape"]},"dirty":true}`
	require.NoError(t, backing.Set(ctx, workflowKey, []byte(raw)))

	s := NewStore(backing)
	require.NoError(t, s.Initialize(ctx, sampleTemplate()))
	require.True(t, s.Restored())

	vals := s.Values()
	require.Len(t, vals, 4)
	require.Equal(t, "Acme", vals["client_name"].String())
	require.False(t, vals["logo"].IsList())
	require.Equal(t, "", vals["logo"].String())
	require.True(t, vals["nearby_amenities"].IsList())
}

func TestStore_DiscardsOtherTemplate(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	first := NewStore(backing)
	require.NoError(t, first.Initialize(ctx, sampleTemplate()))
	require.NoError(t, first.SetValue(ctx, "client_name", template.Text("Acme")))

	other := template.Template{ID: "8", Name: "Other", Placeholders: []template.Placeholder{{Name: "title", Kind: template.KindText}}}
	second := NewStore(backing)
	require.NoError(t, second.Initialize(ctx, other))
	require.False(t, second.Restored())

	_, err := backing.Get(ctx, workflowKey)
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	require.NoError(t, backing.Set(ctx, workflowKey, []byte("{not json")))

	s := NewStore(backing)
	sess, err := s.Lookup(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)

	_, err = backing.Get(ctx, workflowKey)
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, backing.Set(ctx, workflowKey, []byte("[]")))
	require.NoError(t, s.Initialize(ctx, sampleTemplate()))
	require.False(t, s.Restored())
}

func TestStore_CompleteAndClear(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	s := NewStore(backing)
	require.NoError(t, s.Initialize(ctx, sampleTemplate()))

	require.NoError(t, s.SetValue(ctx, "client_name", template.Text("Acme")))
	require.NoError(t, s.SetValue(ctx, "logo", template.Text("temp/abc.jpg")))
	require.NoError(t, s.SetValue(ctx, "nearby_amenities", template.List("", "  ")))
	require.NoError(t, s.SetValue(ctx, "tier", template.Text("Gold")))
	require.False(t, s.IsComplete())
	require.Equal(t, []string{"nearby_amenities"}, s.Missing())

	require.NoError(t, s.SetValue(ctx, "nearby_amenities", template.List("", "Park")))
	require.True(t, s.IsComplete())

	sess, err := s.Lookup(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)

	require.NoError(t, s.Clear(ctx))
	require.False(t, s.IsComplete())
	require.False(t, s.Dirty())
	_, ok := s.Template()
	require.False(t, ok)

	sess, err = s.Lookup(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestStore_InitializeRejectsDuplicates(t *testing.T) {
	tpl := template.Template{ID: "1", Placeholders: []template.Placeholder{
		{Name: "a", Kind: template.KindText},
		{Name: "a", Kind: template.KindImage},
	}}
	require.Error(t, NewStore(kv.NewMemoryStore()).Initialize(context.Background(), tpl))
}

func TestStore_InitializeRejectsUnknownKind(t *testing.T) {
	tpl := template.Template{ID: "1", Placeholders: []template.Placeholder{
		{Name: "clip", Kind: template.Kind("video")},
	}}
	s := NewStore(kv.NewMemoryStore())
	require.NotPanics(t, func() {
		require.Error(t, s.Initialize(context.Background(), tpl))
	})
}
