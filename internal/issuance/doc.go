// Package issuance implements the scraping pipeline that turns the source
// site's paginated listing pages into persisted issuance records with
// downloaded attachments.
package issuance
