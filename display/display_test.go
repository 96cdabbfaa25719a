package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/devize/spec"
)

func TestMarshalJSONCanonical(t *testing.T) {
	data, err := MarshalJSON(spec.Bag{
		"mean": 3.0,
		"node": spec.Spec{"type": "circle", "r": 2},
		"map":  spec.Func(func(spec.Bag) (any, error) { return nil, nil }),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":3,"node":{"type":"circle","r":2}}`, string(data))
}

func TestWriteFormats(t *testing.T) {
	v := spec.Spec{"type": "rectangle", "width": 2.5}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v, FormatYAML))
	assert.Contains(t, buf.String(), "type: rectangle")
	assert.Contains(t, buf.String(), "width: 2.5")

	buf.Reset()
	require.NoError(t, Write(&buf, v, FormatTOML))
	assert.Contains(t, buf.String(), "type = 'rectangle'")

	buf.Reset()
	require.NoError(t, Write(&buf, v, FormatJSON))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))

	err := Write(&buf, v, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format: xml")
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "devize"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "version"}
	child.Flags().Bool("json", false, "")
	root.AddCommand(child)

	t.Setenv(EnvOutput, "")
	assert.False(t, ShouldOutputJSON(child))

	t.Setenv(EnvOutput, "json")
	assert.True(t, ShouldOutputJSON(child))
	assert.True(t, ShouldOutputJSON(nil))

	require.NoError(t, child.Flags().Set("json", "false"))
	assert.False(t, ShouldOutputJSON(child), "explicit flag wins over the environment")

	t.Setenv(EnvOutput, "")
	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	other := &cobra.Command{Use: "types"}
	root.AddCommand(other)
	assert.True(t, ShouldOutputJSON(other))
}

func TestOutputJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, OutputJSON(cmd, map[string]any{"ok": true}))
	assert.JSONEq(t, `{"ok":true}`, buf.String())
}
