package models

import "strings"

type Bank struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	AppID string `json:"app_id"`
}

// Banks is the set of banks the pipeline scrapes and compares.
var Banks = []Bank{
	{Code: "CBE", Name: "Commercial Bank of Ethiopia", AppID: "com.combanketh.mobilebanking"},
	{Code: "BOA", Name: "Bank of Abyssinia", AppID: "com.boa.boaMobileBanking"},
	{Code: "Dashen", Name: "Dashen Bank", AppID: "com.dashen.dashensuperapp"},
}

// Slug is the file-name form of the bank name: lowercase, spaces as "_".
func (b Bank) Slug() string {
	return Slug(b.Name)
}

func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// BankByName finds a registered bank by name or code, ignoring case.
func BankByName(name string) (Bank, bool) {
	name = strings.TrimSpace(name)
	for _, b := range Banks {
		if strings.EqualFold(b.Name, name) || strings.EqualFold(b.Code, name) {
			return b, true
		}
	}
	return Bank{}, false
}
