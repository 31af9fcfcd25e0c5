package tenant

import "github.com/huangang/bizboard/internal/models"

// PublicSite is what anonymous visitors of a tenant host may see. It never
// carries component settings, pipelines or integrations.
type PublicSite struct {
	Subdomain    string         `json:"subdomain"`
	BusinessName string         `json:"business_name"`
	BusinessType string         `json:"business_type"`
	NavStyle     string         `json:"nav_style"`
	Colors       models.Palette `json:"colors"`
	Pages        []PublicPage   `json:"pages"`
}

type PublicPage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

func (t *Tenant) PublicSite() PublicSite {
	site := PublicSite{
		Subdomain: t.Label,
		Colors:    models.ClonePalette(t.Config.Colors.Data()),
		NavStyle:  t.Config.NavStyle,
		Pages:     []PublicPage{},
	}
	site.BusinessName = t.Config.BusinessName
	if site.BusinessName == "" && t.Profile != nil {
		site.BusinessName = t.Profile.BusinessName
	}
	site.BusinessType = t.Config.BusinessType
	for _, tab := range t.Config.Tabs.Data() {
		site.Pages = append(site.Pages, PublicPage{ID: tab.ID, Label: tab.Label, Icon: tab.Icon})
	}
	return site
}
