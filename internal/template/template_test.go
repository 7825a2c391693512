package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"", KindText, false},
		{"text", KindText, false},
		{"IMAGE", KindImage, false},
		{"list", KindList, false},
		{" choice ", KindChoice, false},
		{"video", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyValuesMatchKinds(t *testing.T) {
	tpl := &Template{
		ID: "1",
		Placeholders: []Placeholder{
			{Name: "client_name", Kind: KindText},
			{Name: "logo", Kind: KindImage},
			{Name: "amenities", Kind: KindList},
			{Name: "tier", Kind: KindChoice, Options: []string{"Gold", "Silver"}},
		},
	}

	vals := tpl.EmptyValues()
	require.Len(t, vals, 4)
	for _, p := range tpl.Placeholders {
		v, ok := vals[p.Name]
		require.True(t, ok, "missing %s", p.Name)
		require.True(t, v.Equal(p.Kind.Empty()), "%s: unexpected default", p.Name)
		require.False(t, p.Kind.Filled(v))
	}
	require.True(t, vals["amenities"].IsList())
	require.Empty(t, vals["amenities"].Items())
}

func TestKindFilled(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		value Value
		want  bool
	}{
		{"text blank", KindText, Text("   "), false},
		{"text set", KindText, Text("Acme"), true},
		{"image key", KindImage, Text("temp/abc.jpg"), true},
		{"choice empty", KindChoice, Text(""), false},
		{"list empty", KindList, List(), false},
		{"list blank rows", KindList, List("", "  "), false},
		{"list one item", KindList, List("", "Park"), true},
		{"list given text", KindList, Text("Park"), false},
		{"text given list", KindText, List("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.kind.Filled(tt.value))
		})
	}
}

func TestValueJSON(t *testing.T) {
	vals := Values{
		"client_name": Text("Acme"),
		"amenities":   List("Park", "Gym"),
		"empty_list":  List(),
	}

	data, err := json.Marshal(vals)
	require.NoError(t, err)
	require.JSONEq(t, `{"client_name":"Acme","amenities":["Park","Gym"],"empty_list":[]}`, string(data))

	var decoded Values
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, vals.Equal(decoded))

	var nullValue Value
	require.NoError(t, json.Unmarshal([]byte("null"), &nullValue))
	require.False(t, nullValue.IsList())
	require.Equal(t, "", nullValue.String())
}

func TestTemplateDecode(t *testing.T) {
	raw := `{"id": 42, "name": "Pitch", "placeholders": [{"name": "client"}, {"name": "logo", "type": "image"}]}`

	var tpl Template
	require.NoError(t, json.Unmarshal([]byte(raw), &tpl))
	require.Equal(t, ID("42"), tpl.ID)
	require.Equal(t, KindText, tpl.Placeholders[0].Kind)
	require.Equal(t, KindImage, tpl.Placeholders[1].Kind)
	require.False(t, tpl.Trashed())

	var strID Template
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","name":"x","placeholders":[]}`), &strID))
	require.Equal(t, ID("abc"), strID.ID)
}

func TestValidateRejectsDuplicates(t *testing.T) {
	tpl := &Template{Placeholders: []Placeholder{{Name: "a", Kind: KindText}, {Name: "a", Kind: KindImage}}}
	require.Error(t, tpl.Validate())

	tpl = &Template{Placeholders: []Placeholder{{Name: " ", Kind: KindText}}}
	require.Error(t, tpl.Validate())
}

func TestValidateRejectsUnknownKinds(t *testing.T) {
	for _, k := range []Kind{"video", "", "Image"} {
		tpl := &Template{Placeholders: []Placeholder{{Name: "a", Kind: k}}}
		err := tpl.Validate()
		require.Error(t, err, k)
		require.Contains(t, err.Error(), "unknown placeholder kind")
	}

	tpl := &Template{Placeholders: []Placeholder{{Name: "a", Kind: KindList}}}
	require.NoError(t, tpl.Validate())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny([]any{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, v.Items())

	v, err = FromAny("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", v.String())

	_, err = FromAny([]any{"a", 3})
	require.Error(t, err)
}

func TestScanAndRender(t *testing.T) {
	text := "Hello {{client_name}}, see {{image:logo}} and {{list:amenities}} {{client_name}} {{video:clip}}"

	found := Scan(text)
	require.Equal(t, []Placeholder{
		{Name: "client_name", Kind: KindText},
		{Name: "logo", Kind: KindImage},
		{Name: "amenities", Kind: KindList},
	}, found)

	out := Render("Hi {{client_name}}: {{list:amenities}} {{missing}}", Values{
		"client_name": Text("Acme"),
		"amenities":   List("Park", "", "Gym"),
	})
	require.Equal(t, "Hi Acme: Park\nGym {{missing}}", out)
}
