package models

import "time"

// CompanyAlias maps a free-text alias to a canonical company id owned by
// the surrounding CRM. AliasText is stored normalized; many aliases may
// point at one company but an alias never points at more than one.
type CompanyAlias struct {
	ID        int64     `json:"id"`
	AliasText string    `json:"aliasText"`
	CompanyID int64     `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
}
