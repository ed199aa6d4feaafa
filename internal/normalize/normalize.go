package normalize

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"novareg/internal/model"
)

// Text is a string that tolerates loosely-typed JSON: numbers, booleans and
// null all coerce to their textual form. Extraction services are not trusted
// to emit consistent types.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// Record is one untrusted candidate order from an external source. Any
// subset of fields may be absent.
type Record struct {
	LineNumber       Text `json:"lineNumber"`
	VendorCode       Text `json:"vendorCode"`
	CustomerName     Text `json:"customerName"`
	Description      Text `json:"description"`
	EstNum           Text `json:"estNum"`
	OrderNum         Text `json:"orderNum"`
	OrderDate        Text `json:"orderDate"`
	ExpectedRecvDate Text `json:"expectedRecvDate"`
	Status           Text `json:"status"`
}

// Normalizer converts raw records into canonical orders, assigning ids and
// a running line-number counter across one import batch. The counter starts
// at the registry size and advances once per accepted record.
type Normalizer struct {
	idPrefix string
	counter  int
}

// NewNormalizer seeds the line counter with the current registry size.
// idPrefix distinguishes the record source in generated ids ("rec", "csv").
func NewNormalizer(registrySize int, idPrefix string) *Normalizer {
	return &Normalizer{idPrefix: idPrefix, counter: registrySize}
}

// Clean coerces, trims and validates one record. It returns false when both
// vendor code and customer name are empty after trimming; such records are
// dropped silently.
func (n *Normalizer) Clean(raw Record) (model.Order, bool) {
	vendor := strings.ToUpper(strings.TrimSpace(string(raw.VendorCode)))
	customer := strings.TrimSpace(string(raw.CustomerName))
	if vendor == "" && customer == "" {
		return model.Order{}, false
	}
	n.counter++
	line := strings.ReplaceAll(strings.TrimSpace(string(raw.LineNumber)), ".", "")
	if line == "" {
		line = strconv.Itoa(n.counter)
	}
	status := strings.TrimSpace(string(raw.Status))
	if status == "" {
		status = "Ordered"
	}
	return model.Order{
		ID:               NewID(n.idPrefix),
		LineNumber:       line,
		VendorCode:       vendor,
		CustomerName:     customer,
		Description:      strings.TrimSpace(string(raw.Description)),
		EstNum:           strings.TrimSpace(string(raw.EstNum)),
		OrderNum:         strings.TrimSpace(string(raw.OrderNum)),
		OrderDate:        strings.TrimSpace(string(raw.OrderDate)),
		ExpectedRecvDate: strings.TrimSpace(string(raw.ExpectedRecvDate)),
		Status:           status,
	}, true
}

// NewID generates an identifier unique within a process lifetime: an
// advancing timestamp plus random bits. Collisions are not actively checked.
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%d-%06x", prefix, time.Now().UnixNano(), rand.Intn(1<<24))
}
