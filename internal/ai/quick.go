package ai

import "regexp"

// quickPatterns pulls a handful of rental-contract fields straight from the
// raw text. The structured extractor stays authoritative; these only fill
// gaps it leaves empty.
var quickPatterns = map[string]*regexp.Regexp{
	"contract_number": regexp.MustCompile(`(?i)contrato\s+(?:n[ºo.]?\s*)?([0-9][0-9./-]*[0-9])`),
	"landlord_cpf":    regexp.MustCompile(`(?i)locador[^\n]*?(\d{3}\.\d{3}\.\d{3}-\d{2})`),
	"tenant_cpf":      regexp.MustCompile(`(?i)locat[áa]ri[oa][^\n]*?(\d{3}\.\d{3}\.\d{3}-\d{2})`),
	"guarantor_cpf":   regexp.MustCompile(`(?i)fiador[^\n]*?(\d{3}\.\d{3}\.\d{3}-\d{2})`),
	"rent_amount":     regexp.MustCompile(`(?i)aluguel[^\n]*?R\$\s*([\d.]+(?:,\d{2})?)`),
	"payment_day":     regexp.MustCompile(`(?i)vencimento[^\n]*?dia\s+(\d{1,2})`),
	"start_date":      regexp.MustCompile(`(?i)in[íi]cio[^\n]*?(\d{2}/\d{2}/\d{4})`),
	"end_date":        regexp.MustCompile(`(?i)t[ée]rmino[^\n]*?(\d{2}/\d{2}/\d{4})`),
	"sign_date":       regexp.MustCompile(`(?i)assinatura[^\n]*?(\d{2}/\d{2}/\d{4})`),
}

// QuickContractFields scans raw contract text with plain patterns and
// returns whatever it can recognize. Missing fields are simply absent.
func QuickContractFields(text string) map[string]string {
	fields := make(map[string]string)
	for key, re := range quickPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			fields[key] = m[1]
		}
	}
	return fields
}
