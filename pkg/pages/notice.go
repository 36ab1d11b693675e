package pages

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeFailure
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeFailure:
		return "failure"
	}
	return "none"
}

// Notice is the outcome message of a page action. Kind decides how it is
// shown; Text is what the user reads.
type Notice struct {
	Kind NoticeKind
	Text string
}

func Success(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }
func Failure(text string) Notice { return Notice{Kind: NoticeFailure, Text: text} }

func (n Notice) IsZero() bool    { return n.Kind == NoticeNone }
func (n Notice) IsFailure() bool { return n.Kind == NoticeFailure }
