//go:build windows

package object

type WindowsErrorKind struct{}

func (WindowsErrorKind) ExcName() string { return "WindowsError" }

type WindowsError = Exc[WindowsErrorKind]

func init() {
	excKinds = append(excKinds, WindowsErrorKind{})
}
