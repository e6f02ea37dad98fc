package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	locales := b.Locales()
	if len(locales) < 3 || locales[0] != BaseLocale {
		t.Fatalf("unexpected locales: %v", locales)
	}
	for _, key := range []string{
		"AssetList.Title", "AssetList.ToggleOpenCloseARIA", "AssetList.Delete", "AssetList.OpenNewTab",
		"Common.DeleteConfirmation", "AssetList.NoUploadedAssets", "AssetList.HeaderName",
		"AssetList.HeaderSize", "AssetList.HeaderSketch",
	} {
		if _, ok := b.Message(BaseLocale, key); !ok {
			t.Fatalf("missing base message %s", key)
		}
	}
}

func TestTranslatorFormatsArgs(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tr := b.Translator("en-US")
	if got := tr.T("Common.DeleteConfirmation", "foo.png"); got != "Are you sure you want to delete foo.png?" {
		t.Fatalf("unexpected confirmation %q", got)
	}
	es := b.Translator("es-419")
	if got := es.T("AssetList.Delete"); got != "Borrar" {
		t.Fatalf("unexpected es delete %q", got)
	}
}

func TestTranslatorFallsBackToBase(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ja := b.Translator("ja")
	// only defined in en-US
	if got := ja.T("Common.ConfirmHint"); got != "y yes · n no" {
		t.Fatalf("expected base fallback, got %q", got)
	}
	if got := ja.T("Missing.Key"); got != "Missing.Key" {
		t.Fatalf("expected key for unknown message, got %q", got)
	}
}

func TestMatch(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cases := map[string]string{
		"":           BaseLocale,
		"en-US":      BaseLocale,
		"es-419":     "es-419",
		"ja-JP":      "ja",
		"not a tag!": BaseLocale,
	}
	for in, want := range cases {
		if got := b.Match(in); got != want {
			t.Fatalf("Match(%q) = %q, want %q", in, got, want)
		}
	}
	if got := b.Translator("ja-JP").Locale(); got != "ja" {
		t.Fatalf("unexpected translator locale %q", got)
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/AssetList.yaml"), `locale: "en-US"
namespace: "AssetList"
messages:
  "Common.Bad": "nope"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/ja/Common.yaml"), `locale: "ja"
namespace: "Common"
messages:
  "Common.Ok": "ok"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/Common.yaml"), `locale: "en-GB"
namespace: "Common"
messages:
  "Common.Ok": "ok"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected error")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCancelLabelIsLocalized(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for locale, want := range map[string]string{"en-US": "Cancel", "es-419": "Cancelar", "ja": "キャンセル"} {
		if got := b.Translator(locale).T("Common.Cancel"); got != want {
			t.Errorf("%s: got %q want %q", locale, got, want)
		}
	}
}
