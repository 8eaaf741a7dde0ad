package entity

// PageState classifies where a navigation actually landed.
type PageState int

const (
	OnTarget PageState = iota
	LoginRedirect
	UnknownRedirect
)

func (s PageState) String() string {
	switch s {
	case OnTarget:
		return "on_target"
	case LoginRedirect:
		return "login_redirect"
	case UnknownRedirect:
		return "unknown_redirect"
	default:
		return "invalid"
	}
}
