package model

import "strings"

// Order is the canonical unit of work held in the registry. ID is assigned
// once at normalization time and never reassigned; Description is the only
// field that may be edited after import.
type Order struct {
	ID               string `json:"id"`
	LineNumber       string `json:"lineNumber"`
	VendorCode       string `json:"vendorCode"`
	CustomerName     string `json:"customerName"`
	Description      string `json:"description"`
	EstNum           string `json:"estNum"`
	OrderNum         string `json:"orderNum"`
	OrderDate        string `json:"orderDate"`
	ExpectedRecvDate string `json:"expectedRecvDate"`
	Status           string `json:"status"`
}

// NaturalKeyMatches reports whether two orders refer to the same real-world
// order: identical vendor code, order number and customer name on already
// normalized values.
func (o Order) NaturalKeyMatches(other Order) bool {
	return o.VendorCode == other.VendorCode &&
		o.OrderNum == other.OrderNum &&
		o.CustomerName == other.CustomerName
}

// ShortName returns the display portion of the customer name: the text
// before a " - " delimiter, if present.
func (o Order) ShortName() string {
	name, _, _ := strings.Cut(o.CustomerName, " - ")
	return strings.TrimSpace(name)
}

// PendingImport is a transient decision unit produced during reconciliation.
// It is never persisted; it lives only until the duplicate decision resolves.
type PendingImport struct {
	NewOrder    Order  `json:"newOrder"`
	IsDuplicate bool   `json:"isDuplicate"`
	ExistingID  string `json:"existingId,omitempty"`
}
