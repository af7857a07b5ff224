package cc

import (
	"strings"

	"github.com/ccfront/cc/ascii"
)

// Severity discriminates fatal diagnostics from advisory ones, e.g.
// the @defer-stack-exhaustion warning that the spec says must not stop
// the pipeline.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single line-oriented, deterministic report attached
// to a source location, collected by a Diagnostics sink rather than
// returned as a single "first error wins" value, since §7 requires
// collecting everything found for a translation unit.
type Diagnostic struct {
	Severity Severity
	Category Category
	Message  string
	Location SourceLocation
}

func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Category.String() + " @ " + d.Location.Span.String() + ": " + d.Message
}

// ColorString renders the same line as String, with the severity tag
// colorized per theme (CLI output on a terminal; String stays the
// plain, deterministic form tests and redirected output compare on).
func (d Diagnostic) ColorString(theme ascii.Theme) string {
	color := theme.Error
	if d.Severity == SeverityWarning {
		color = theme.Warning
	}
	tag := ascii.Color(color, "%s", d.Severity.String())
	span := ascii.Color(theme.Span, "%s", d.Location.Span.String())
	return tag + ": " + d.Category.String() + " @ " + span + ": " + d.Message
}

// Diagnostics collects every error and warning produced while
// compiling one translation unit, in the order they were reported.
type Diagnostics struct {
	items []Diagnostic
}

func NewDiagnostics() *Diagnostics { return &Diagnostics{} }

func (d *Diagnostics) Report(severity Severity, cat Category, message string, loc SourceLocation) {
	d.items = append(d.items, Diagnostic{Severity: severity, Category: cat, Message: message, Location: loc})
}

func (d *Diagnostics) ReportError(err error, fileID FileID) {
	if ce, ok := err.(CCError); ok {
		d.Report(SeverityError, ce.Category, ce.Message, NewSourceLocation(fileID, ce.Span))
		return
	}
	d.Report(SeverityError, CategoryInternal, err.Error(), SourceLocation{FileID: fileID})
}

func (d *Diagnostics) HasErrors() bool {
	for _, it := range d.items {
		if it.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (d *Diagnostics) Items() []Diagnostic { return d.items }

func (d *Diagnostics) String() string {
	var b strings.Builder
	for i, it := range d.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.String())
	}
	return b.String()
}
