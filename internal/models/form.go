package models

// MaxProducts is the number of product slots offered by the creation form.
const MaxProducts = 5

// Phase is the state of a creation form session.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Reason tells why an editing session carries a notice.
type Reason int

const (
	ReasonNone      Reason = iota
	ReasonRejected         // the form failed validation
	ReasonCollision        // the slug was already taken
	ReasonFailed           // the store could not be written
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonRejected:
		return "rejected"
	case ReasonCollision:
		return "collision"
	case ReasonFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProductInput is one product slot exactly as typed into the form.
type ProductInput struct {
	Name  string
	Price string
}

// StoreForm holds the raw, unvalidated field values of the creation form.
type StoreForm struct {
	ShopName    string
	Description string
	Phone       string
	UPI         string
	Products    []ProductInput
}

// FormState is one creation form session. It is a value: every transition
// returns a new FormState and leaves the previous one untouched.
type FormState struct {
	Phase    Phase
	Form     StoreForm
	Suffix   string // Random slug suffix fixed for the whole session
	Slug     string // Set once the store has been written
	ShareURL string
	Reason   Reason
	Notice   string // Rejection message or failure notice shown while editing
}

// WithForm returns a copy of s carrying form. The product slots are copied so
// the two states never share a backing array.
func (s FormState) WithForm(form StoreForm) FormState {
	products := make([]ProductInput, len(form.Products))
	copy(products, form.Products)
	form.Products = products
	s.Form = form
	return s
}

// WithNotice returns a copy of s in the editing phase showing notice.
func (s FormState) WithNotice(reason Reason, notice string) FormState {
	s.Phase = PhaseEditing
	s.Reason = reason
	s.Notice = notice
	return s
}
