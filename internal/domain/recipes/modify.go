package recipes

import (
	"fmt"
	"math/rand"
	"regexp"

	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// ModifyRevert returns a pair of steps: the first appends text to an
// existing file, the second seeks back by the text's byte length and
// truncates. If text is empty a unique marker line is generated.
//
// The revert assumes the appended text is still the last bytes of the file;
// scenarios always run single-writer, so this is a documented assumption
// rather than a guarded invariant.
func (f *Factory) ModifyRevert(file m.Path, text string) (m.Group, error) {
	if text == "" {
		text = markerLine()
	}

	if !f.fs.Exists(file) {
		return m.Group{}, fmt.Errorf("%s does not exist", file)
	}

	id, err := f.layout.DeSrc(file)
	if err != nil {
		return m.Group{}, err
	}

	addLine := func() error {
		return f.fs.AppendFile(file, []byte(text))
	}

	revert := func() error {
		return f.fs.TruncateBy(file, int64(len(text)))
	}

	return m.Group{
		Description: string(id),
		Steps: []m.Step{
			{Verb: "modify", ApplyChange: addLine},
			{Verb: "revert", ApplyChange: revert},
		},
	}, nil
}

// RegexModifyRevert returns a pair of steps: the first captures the file's
// full original text and applies a single first-match substitution, the
// second writes the captured text back verbatim. The capture is single-use;
// a second modify without an intervening revert fails.
func (f *Factory) RegexModifyRevert(file m.Path, pattern, replacement, modifyType string) (m.Group, error) {
	if !f.fs.Exists(file) {
		return m.Group{}, fmt.Errorf("%s does not exist", file)
	}

	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return m.Group{}, fmt.Errorf("bad pattern for %s: %w", modifyType, err)
	}

	id, err := f.layout.DeSrc(file)
	if err != nil {
		return m.Group{}, err
	}

	var original cuj.Capture

	modify := func() error {
		text, readErr := f.fs.ReadFile(file)
		if readErr != nil {
			return readErr
		}

		if setErr := original.Set(text); setErr != nil {
			return fmt.Errorf("%s on %s: %w", modifyType, id, setErr)
		}

		return f.fs.WriteFile(file, replaceFirst(re, text, replacement), 0o644)
	}

	revert := func() error {
		text, takeErr := original.Take()
		if takeErr != nil {
			return fmt.Errorf("revert of %s on %s: %w", modifyType, id, takeErr)
		}

		return f.fs.WriteFile(file, text, 0o644)
	}

	return m.Group{
		Description: string(id),
		Steps: []m.Step{
			{Verb: modifyType, ApplyChange: modify},
			{Verb: "revert", ApplyChange: revert},
		},
	}, nil
}

// replaceFirst substitutes only the first match, expanding $1-style
// references in the replacement template.
func replaceFirst(re *regexp.Regexp, src []byte, replacement string) []byte {
	loc := re.FindSubmatchIndex(src)
	if loc == nil {
		return src
	}

	out := append([]byte(nil), src[:loc[0]]...)
	out = re.Expand(out, []byte(replacement), src, loc)

	return append(out, src[loc[1]:]...)
}

// ModifyPrivateMethod appends a log statement to the body of a private
// static method.
func (f *Factory) ModifyPrivateMethod(file m.Path) (m.Group, error) {
	pattern := `(private static boolean.*{)`
	replacement := fmt.Sprintf(`${1} Log.d("Placeholder", "Placeholder%d");`, rand.Intn(1000))

	return f.RegexModifyRevert(file, pattern, replacement, "modify_private_method")
}

// AddPrivateField injects a private constant before the closing brace.
func (f *Factory) AddPrivateField(file m.Path) (m.Group, error) {
	pattern := `^\}$`
	replacement := fmt.Sprintf("private static final int FOO = %d;\n}", rand.Intn(1000))

	return f.RegexModifyRevert(file, pattern, replacement, "add_private_field")
}

// AddPublicAPI injects a public constant before the closing brace.
func (f *Factory) AddPublicAPI(file m.Path) (m.Group, error) {
	pattern := `\}$`
	replacement := fmt.Sprintf("public static final int BAZ = %d;\n}", rand.Intn(1000))

	return f.RegexModifyRevert(file, pattern, replacement, "add_public_api")
}

// ModifyResource rewrites a zero-valued resource entry.
func (f *Factory) ModifyResource(file m.Path) (m.Group, error) {
	pattern := `>0<`
	replacement := fmt.Sprintf(">%d<", rand.Intn(1000))

	return f.RegexModifyRevert(file, pattern, replacement, "modify_resource")
}

// AddResource inserts a new integer resource before the closing tag.
func (f *Factory) AddResource(file m.Path) (m.Group, error) {
	pattern := `</resources>`
	replacement := fmt.Sprintf("    <integer name=\"foo\">%d</integer>\n</resources>", rand.Intn(1000))

	return f.RegexModifyRevert(file, pattern, replacement, "add_resource")
}
