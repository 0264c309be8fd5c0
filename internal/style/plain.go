package style

// Plain is the no-op Styler.
type Plain struct{}

var _ Styler = Plain{}

func (Plain) Error(s string) string   { return s }
func (Plain) Warn(s string) string    { return s }
func (Plain) Muted(s string) string   { return s }
func (Plain) Dim(s string) string     { return s }
func (Plain) Bold(s string) string    { return s }
func (Plain) Success(s string) string { return s }

func (Plain) Rule(label string, width int) string {
	if label != "" {
		label = " " + label + " "
	}
	return divider(label, width, func(s string) string { return s })
}
