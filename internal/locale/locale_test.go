package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNew_PicksRequestedLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want language.Tag
		name string
	}{
		{"zh", language.Chinese, "电压范围计算器"},
		{"zh-CN", language.Chinese, "电压范围计算器"},
		{"en", language.English, "Voltage Range Calculator"},
		{"en-GB", language.English, "Voltage Range Calculator"},
		{"de", language.English, "Voltage Range Calculator"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			tr, err := New(tt.lang)
			require.NoError(t, err)
			require.Equal(t, tt.want, tr.Tag())
			require.Equal(t, tt.name, tr.BundleFolderName(""))
		})
	}
}

func TestNew_InvalidLanguage(t *testing.T) {
	_, err := New("not a tag!")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid language")
}

func TestBundleFolderName_Override(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	require.Equal(t, "Rechner", tr.BundleFolderName("  Rechner "))

	safe := tr.BundleFolderName("Volt/Calc")
	require.NotContains(t, safe, "/")
	require.NotEmpty(t, safe)
}

func TestLoc(t *testing.T) {
	tr, err := New("zh")
	require.NoError(t, err)

	require.Equal(t, "构建完成：D:/dist/x", tr.Loc("build_complete", Strmap{"Path": "D:/dist/x"}))
	require.Equal(t, "failed to translate! nope", tr.Loc("nope", nil))
}
