package payment

import (
	"errors"
	"strings"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/config"
)

const MethodBankTransfer = "BANK_TRANSFER"

var ErrPaymentInfoUnavailable = errors.New("payment information is not configured")

// BankDetails is the account quote payments are transferred to.
type BankDetails struct {
	Method      string `json:"method"`
	Beneficiary string `json:"beneficiary"`
	IBAN        string `json:"iban"`
	BIC         string `json:"bic,omitempty"`
	BankName    string `json:"bank_name,omitempty"`
}

// NewBankDetails returns ErrPaymentInfoUnavailable when no IBAN is configured.
func NewBankDetails(cfg config.PaymentConfig) (*BankDetails, error) {
	if strings.TrimSpace(cfg.IBAN) == "" {
		return nil, ErrPaymentInfoUnavailable
	}
	return &BankDetails{
		Method:      MethodBankTransfer,
		Beneficiary: cfg.Beneficiary,
		IBAN:        cfg.IBAN,
		BIC:         cfg.BIC,
		BankName:    cfg.BankName,
	}, nil
}

// InstructionMap holds the transfer steps per locale.
var InstructionMap = map[string][]string{
	"fr": {
		"Effectuez un virement de {{amount}} EUR au bénéficiaire {{beneficiary}}",
		"IBAN : {{iban}}",
		"BIC : {{bic}}",
		"Indiquez la référence {{order_number}} dans le libellé du virement",
		"Envoyez ensuite la référence du virement depuis la page de suivi de votre devis",
	},
	"en": {
		"Transfer {{amount}} EUR to the beneficiary {{beneficiary}}",
		"IBAN: {{iban}}",
		"BIC: {{bic}}",
		"Use {{order_number}} as the transfer reference",
		"Then submit the transfer reference from your quote tracking page",
	},
}

// GetInstructions returns the steps for locale, falling back to the default locale.
func GetInstructions(locale string) []string {
	if steps, ok := InstructionMap[locale]; ok {
		return steps
	}
	if steps, ok := InstructionMap[catalog.DefaultLocale()]; ok {
		return steps
	}
	return InstructionMap["fr"]
}

type InstructionVars map[string]string

// InjectVariables replaces {{key}} placeholders. Unknown placeholders are left as is.
func InjectVariables(
	steps []string,
	vars InstructionVars,
) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(
				updated,
				"{{"+key+"}}",
				value,
			)
		}
		result = append(result, updated)
	}

	return result
}

// Instructions renders the transfer steps for one order.
func (b *BankDetails) Instructions(locale, orderNumber, amount string) []string {
	return InjectVariables(GetInstructions(locale), InstructionVars{
		"amount":       amount,
		"beneficiary":  b.Beneficiary,
		"iban":         b.IBAN,
		"bic":          b.BIC,
		"order_number": orderNumber,
	})
}
