package domain

// DefaultLoanInterest applies when an application leaves the interest
// field out entirely. An explicit zero is a zero-interest loan.
const DefaultLoanInterest = 0.08

// Loan is a member's loan application. One application per member,
// keyed by the member id.
type Loan struct {
	MemberID   int64   `json:"memberId"`
	Amount     float64 `json:"amount"`
	Interest   float64 `json:"interest"`
	Year       int     `json:"year"`
	MonthRepay float64 `json:"monthrepay"`
}

// LoanWithMember is a loan joined with the owning member's first name,
// used by the admin listing.
type LoanWithMember struct {
	Loan
	Firstname string `json:"firstname"`
}

// LoanPage is one page of the admin loan listing.
type LoanPage struct {
	Loans   []*LoanWithMember
	Page    int
	PerPage int
	Total   int64
	Pages   int
}

type Payment struct {
	PaymentID int64   `json:"paymentId"`
	MemberID  int64   `json:"memberId"`
	PayName   string  `json:"payname"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Receipt   string  `json:"receipt"`
}

type PaymentWithMember struct {
	Payment
	Firstname string `json:"firstname"`
}

// Shares is a member's share-capital record, one per member.
type Shares struct {
	MemberID  int64   `json:"memberId"`
	Shares    float64 `json:"shares"`
	Dividends float64 `json:"dividends"`
	Penalties float64 `json:"penalties"`
}
