package shader

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/toolkit/logging"
)

// IncludeResolver turns include directives into source text, relative to the
// directory of the file that contains them. It holds no mutable state, so one
// resolver can be shared between goroutines.
type IncludeResolver struct {
	dir string
}

// ResolvedInclude is the text of one included file. Name is the joined path,
// not the bare file name, so diagnostics point at the right file.
type ResolvedInclude struct {
	Name    string
	Content string
}

func NewIncludeResolver(dir string) *IncludeResolver {
	return &IncludeResolver{dir: dir}
}

func (r *IncludeResolver) Dir() string {
	return r.dir
}

// Resolve joins requested onto the resolver's directory and reads the file.
// There is no search path and "file" and <file> are treated alike.
func (r *IncludeResolver) Resolve(requested string) (ResolvedInclude, error) {
	path := filepath.Join(r.dir, requested)

	data, err := os.ReadFile(path)
	if err != nil {
		return ResolvedInclude{}, errors.WithStack(&IncludeError{Path: path, Requested: requested, Err: err})
	}
	if !utf8.Valid(data) {
		return ResolvedInclude{}, errors.WithStack(&IncludeError{Path: path, Requested: requested, Err: errors.New("not valid UTF-8 text")})
	}

	return ResolvedInclude{Name: path, Content: string(data)}, nil
}

// Resolver returns a resolver for includes written inside this file.
func (i ResolvedInclude) Resolver() *IncludeResolver {
	return NewIncludeResolver(filepath.Dir(i.Name))
}

var (
	includeDirective = regexp.MustCompile(`^\s*#\s*include\s*(?:"([^"]+)"|<([^>]+)>)\s*(?://.*)?$`)
	ifZeroDirective  = regexp.MustCompile(`^\s*#\s*if\s+0\s*(?://.*)?$`)
	ifDirective      = regexp.MustCompile(`^\s*#\s*if(?:n?def)?\b`)
	elseDirective    = regexp.MustCompile(`^\s*#\s*(?:else|elif)\b`)
	endifDirective   = regexp.MustCompile(`^\s*#\s*endif\b`)
)

// SourceMap records which file each line of expanded source came from.
type SourceMap struct {
	spans []SourceSpan
}

// SourceSpan is a run of consecutive expanded lines copied from one file.
// Line is the first expanded line of the run and FileLine is where that line
// sits in File. Both count from 1.
type SourceSpan struct {
	Line     int
	File     string
	FileLine int
}

func (m *SourceMap) Spans() []SourceSpan {
	if m == nil {
		return nil
	}
	return m.spans
}

// HasIncludes reports whether any expanded line came from an included file.
func (m *SourceMap) HasIncludes() bool {
	spans := m.Spans()
	for _, span := range spans {
		if span.File != spans[0].File {
			return true
		}
	}
	return false
}

// Locate maps a line of expanded source back to its file and line.
func (m *SourceMap) Locate(line int) (string, int, bool) {
	spans := m.Spans()
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Line > line }) - 1
	if i < 0 || line < 1 {
		return "", 0, false
	}
	return spans[i].File, spans[i].FileLine + line - spans[i].Line, true
}

// lineScanner follows the preprocessor state that decides whether a line
// starting with #include is a live directive: open block comments and
// #if 0 regions.
type lineScanner struct {
	inComment bool
	disabled  int
}

// live reports whether line can hold a directive, then advances past it.
func (s *lineScanner) live(line string) bool {
	live := !s.inComment && s.disabled == 0

	if !s.inComment {
		switch {
		case s.disabled == 0 && ifZeroDirective.MatchString(line):
			s.disabled = 1
		case s.disabled > 0 && ifDirective.MatchString(line):
			s.disabled++
		case s.disabled > 0 && endifDirective.MatchString(line):
			s.disabled--
		case s.disabled == 1 && elseDirective.MatchString(line):
			s.disabled = 0
		}
	}

	for i := 0; i < len(line)-1; i++ {
		switch {
		case s.inComment && line[i] == '*' && line[i+1] == '/':
			s.inComment = false
			i++
		case !s.inComment && line[i] == '/' && line[i+1] == '/':
			return live
		case !s.inComment && line[i] == '/' && line[i+1] == '*':
			s.inComment = true
			i++
		}
	}
	return live
}

type expander struct {
	out   strings.Builder
	lines SourceMap
	// written counts the lines in out.
	written int
}

// expandIncludes replaces every include directive in source with the text of
// the included file, recursively, and maps each output line back to its file.
// name labels the lines of source itself. chain holds the files currently
// being expanded, outermost first; re-entering one of them is an
// ErrIncludeCycle. Directives inside block comments or #if 0 regions are
// left alone.
func expandIncludes(source, name string, resolver *IncludeResolver, chain []string) (string, *SourceMap, error) {
	e := &expander{}
	e.out.Grow(len(source))

	if err := e.expand(source, name, resolver, chain); err != nil {
		return "", nil, err
	}
	return e.out.String(), &e.lines, nil
}

func (e *expander) expand(source, name string, resolver *IncludeResolver, chain []string) error {
	var scanner lineScanner
	resume := true

	for i, line := range strings.SplitAfter(source, "\n") {
		if line == "" {
			continue
		}

		text := strings.TrimRight(line, "\r\n")
		var match []string
		if scanner.live(text) {
			match = includeDirective.FindStringSubmatch(text)
		}

		if match == nil {
			if resume {
				e.lines.spans = append(e.lines.spans, SourceSpan{Line: e.written + 1, File: name, FileLine: i + 1})
				resume = false
			}
			e.out.WriteString(line)
			e.written++
			continue
		}

		requested := match[1]
		if requested == "" {
			requested = match[2]
		}

		included, err := resolver.Resolve(requested)
		if err != nil {
			return err
		}

		for _, active := range chain {
			if active == included.Name {
				return errors.WithStack(&IncludeError{Path: included.Name, Requested: requested, Err: ErrIncludeCycle})
			}
		}

		logging.Logger().WithField("path", included.Name).Debug("resolved shader include")

		if err := e.expand(included.Content, included.Name, included.Resolver(), append(chain[:len(chain):len(chain)], included.Name)); err != nil {
			return err
		}
		if e.out.Len() > 0 && !strings.HasSuffix(e.out.String(), "\n") {
			e.out.WriteString("\n")
		}
		resume = true
	}

	return nil
}
