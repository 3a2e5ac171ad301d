package domain

// DonationInfo is the static donation channel shown on the public site.
type DonationInfo struct {
	BankName      string
	AccountNumber string
	AccountHolder string
	QRISImageURL  string
	Note          string
}
