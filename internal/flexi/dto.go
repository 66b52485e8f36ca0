package flexi

import util "github.com/saulo-duarte/studio-ops/internal/utils"

type CreateCreditDTO struct {
	ClientName  string     `json:"client_name"`
	Hours       float64    `json:"hours"`
	PurchasedOn *util.Date `json:"purchased_on"`
	Notes       string     `json:"notes"`
}
