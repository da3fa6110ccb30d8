package domain

import "time"

// TransactionStatus is the lifecycle state of a deal.
type TransactionStatus string

const (
	TransactionActive    TransactionStatus = "Active"
	TransactionPending   TransactionStatus = "Pending"
	TransactionClosed    TransactionStatus = "Closed"
	TransactionCancelled TransactionStatus = "Cancelled"
	TransactionOffMarket TransactionStatus = "Off Market"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionActive, TransactionPending, TransactionClosed,
		TransactionCancelled, TransactionOffMarket:
		return true
	}
	return false
}

// TransactionType is the kind of deal.
type TransactionType string

const (
	TypeListing       TransactionType = "Listing"
	TypeClosing       TransactionType = "Closing"
	TypeRentalListing TransactionType = "Rental Listing"
	TypeLease         TransactionType = "Lease"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeListing, TypeClosing, TypeRentalListing, TypeLease:
		return true
	}
	return false
}

// TransactionRole is a closing party's function in the deal.
type TransactionRole string

const (
	RoleBuyer       TransactionRole = "Buyer"
	RoleSeller      TransactionRole = "Seller"
	RoleBuyerAgent  TransactionRole = "Buyer Agent"
	RoleSellerAgent TransactionRole = "Seller Agent"
	RoleTitleAgent  TransactionRole = "Title Agent"
	RoleLender      TransactionRole = "Lender"
)

// Valid reports whether r is a known closing-party role.
func (r TransactionRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleBuyerAgent, RoleSellerAgent,
		RoleTitleAgent, RoleLender:
		return true
	}
	return false
}

// PropertyDetails describes the subject property of a transaction.
type PropertyDetails struct {
	Address      string `json:"address"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`
	MLSNumber    string `json:"mlsNumber,omitempty"`
	Bedrooms     int    `json:"bedrooms,omitempty"`
	Bathrooms    int    `json:"bathrooms,omitempty"`
	SquareFeet   int    `json:"squareFeet,omitempty"`
	LotSize      string `json:"lotSize,omitempty"`
	YearBuilt    int    `json:"yearBuilt,omitempty"`
}

// ListingDetails captures the MLS listing metadata for listing transactions.
type ListingDetails struct {
	MLSNumber           string     `json:"mlsNumber,omitempty"`
	ListPrice           float64    `json:"listPrice"`
	MinimumPrice        float64    `json:"minimumPrice,omitempty"`
	MaximumPrice        float64    `json:"maximumPrice,omitempty"`
	Commission          float64    `json:"commission,omitempty"`
	ListingDate         *time.Time `json:"listingDate,omitempty"`
	ExpirationDate      *time.Time `json:"expirationDate,omitempty"`
	DaysOnMarket        int        `json:"daysOnMarket"`
	ListingTerm         int        `json:"listingTerm"`
	ShowingInstructions string     `json:"showingInstructions,omitempty"`
	LockBoxNumber       string     `json:"lockBoxNumber,omitempty"`
	Terms               string     `json:"terms,omitempty"`
	UploadedToMLS       bool       `json:"uploadedToMls"`
}

// ClosingParty is one participant in a transaction's closing. More than one
// party may carry the primary flag; uniqueness is deliberately not enforced.
type ClosingParty struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Role      TransactionRole `json:"role"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Company   string          `json:"company,omitempty"`
	IsPrimary bool            `json:"isPrimary"`
}

// Transaction is a deal: a listing, closing, rental listing or lease.
// Amount is a pointer so stored records without one aggregate as zero.
type Transaction struct {
	ID              string            `json:"id"`
	Date            *time.Time        `json:"date,omitempty"`
	PropertyAddress string            `json:"propertyAddress"`
	ClientName      string            `json:"clientName"`
	Amount          *float64          `json:"amount,omitempty"`
	Status          TransactionStatus `json:"status"`
	Type            TransactionType   `json:"type"`
	ContactID       string            `json:"contactId,omitempty"`
	ClosingDate     *time.Time        `json:"closingDate,omitempty"`
	ContractDate    *time.Time        `json:"contractDate,omitempty"`
	PropertyDetails *PropertyDetails  `json:"propertyDetails,omitempty"`
	ListingDetails  *ListingDetails   `json:"listingDetails,omitempty"`
	ClosingParties  []ClosingParty    `json:"closingParties,omitempty"`
	Documents       []string          `json:"documents,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	RelatedTaskIDs  []string          `json:"relatedTaskIds,omitempty"`
	RelatedNoteIDs  []string          `json:"relatedNoteIds,omitempty"`
}

// AmountValue returns the transaction amount, treating a missing amount as 0.
func (t Transaction) AmountValue() float64 {
	if t.Amount == nil {
		return 0
	}
	return *t.Amount
}
