// Package registry holds the electoral reference data model: five entity
// tables plus the composite-keyed recommendation index that maps a
// campaign+district pair to a single recommended candidate.
package registry

// UnknownParty is substituted when a candidate's party_id does not resolve.
// Writes never enforce referential integrity, so dangling references are
// handled at read time.
const UnknownParty = "Unknown"

// Region is an electoral region. Districts reference it by region_id.
type Region struct {
	Title string `json:"title"`
}

// District belongs to a region and is one half of the recommendation key.
type District struct {
	RegionID uint64 `json:"region_id"`
	Title    string `json:"title"`
}

// Candidate references its party by party_id. The party may be absent.
type Candidate struct {
	Title   string `json:"title"`
	PartyID uint64 `json:"party_id"`
}

// Recommendation is the denormalized read-time join of a recommendation
// index entry with the candidate and party tables. It is never stored.
type Recommendation struct {
	Title string `json:"title"`
	Party string `json:"party"`
}

// Key is the composite recommendation lookup key. It is a comparable value
// type used directly as a map key so resolution stays a one-hop lookup.
type Key struct {
	CampaignID uint64 `json:"campaign_id"`
	DistrictID uint64 `json:"district_id"`
}
