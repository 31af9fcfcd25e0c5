// Package presets holds the static defaults a tenant starts from: which view
// each component kind renders in, which pipeline stages it groups records
// by, and the initial tab layout per business type.
package presets

import (
	"slices"
	"strings"

	"github.com/huangang/bizboard/internal/models"
)

type ViewMode string

const (
	ViewTable    ViewMode = "table"
	ViewCards    ViewMode = "cards"
	ViewKanban   ViewMode = "kanban"
	ViewCalendar ViewMode = "calendar"
	ViewList     ViewMode = "list"
	ViewGallery  ViewMode = "gallery"
	ViewTimeline ViewMode = "timeline"
)

type ComponentKind string

const (
	KindClients      ComponentKind = "clients"
	KindLeads        ComponentKind = "leads"
	KindAppointments ComponentKind = "appointments"
	KindOrders       ComponentKind = "orders"
	KindInvoices     ComponentKind = "invoices"
	KindProducts     ComponentKind = "products"
	KindInventory    ComponentKind = "inventory"
	KindProjects     ComponentKind = "projects"
	KindTasks        ComponentKind = "tasks"
	KindStaff        ComponentKind = "staff"
	KindMenu         ComponentKind = "menu"
	KindReviews      ComponentKind = "reviews"
	KindDocuments    ComponentKind = "documents"
	KindMessages     ComponentKind = "messages"
)

type BusinessType string

const (
	BusinessGeneric     BusinessType = "generic"
	BusinessSalon       BusinessType = "salon"
	BusinessRestaurant  BusinessType = "restaurant"
	BusinessAgency      BusinessType = "agency"
	BusinessContractor  BusinessType = "contractor"
	BusinessRetail      BusinessType = "retail"
	BusinessFitness     BusinessType = "fitness"
	BusinessRealEstate  BusinessType = "real_estate"
	BusinessConsultancy BusinessType = "consultancy"
)

var businessTypes = []BusinessType{
	BusinessGeneric, BusinessSalon, BusinessRestaurant, BusinessAgency, BusinessContractor,
	BusinessRetail, BusinessFitness, BusinessRealEstate, BusinessConsultancy,
}

// ParseBusinessType maps free text to a known business type; anything
// unrecognized is generic.
func ParseBusinessType(s string) BusinessType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for _, bt := range businessTypes {
		if string(bt) == s {
			return bt
		}
	}
	return BusinessGeneric
}

// StageSpec is a default stage before it is materialized into a pipeline.
type StageSpec struct {
	ID    string
	Name  string
	Color string
}

type viewSpec struct {
	def       ViewMode
	available []ViewMode
}

// Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	views     map[ComponentKind]viewSpec
	pipelines map[BusinessType]map[ComponentKind][]StageSpec
	fallback  []StageSpec
	tabs      map[BusinessType][]models.Tab
}

// Default returns the registry built from the shipped tables.
func Default() *Registry {
	return &Registry{
		views:     defaultViews,
		pipelines: defaultPipelines,
		fallback:  genericStatusPipeline,
		tabs:      defaultTabLayouts,
	}
}

// KnownKind reports whether kind is part of the component catalog.
func (r *Registry) KnownKind(kind string) bool {
	_, ok := r.views[ComponentKind(kind)]
	return ok
}

// DefaultView returns the view a component renders in until customized.
// Unknown kinds render as a table.
func (r *Registry) DefaultView(kind string) ViewMode {
	if spec, ok := r.views[ComponentKind(kind)]; ok {
		return spec.def
	}
	return ViewTable
}

// AvailableViews lists the views a component kind supports, default first.
func (r *Registry) AvailableViews(kind string) []ViewMode {
	spec, ok := r.views[ComponentKind(kind)]
	if !ok {
		return []ViewMode{ViewTable}
	}
	return slices.Clone(spec.available)
}

func (r *Registry) IsViewAvailable(kind string, view string) bool {
	spec, ok := r.views[ComponentKind(kind)]
	if !ok {
		return false
	}
	return slices.Contains(spec.available, ViewMode(view))
}

// EffectiveView is the stored view when set, otherwise the kind default.
func (r *Registry) EffectiveView(c models.Component) ViewMode {
	if c.View != nil && *c.View != "" {
		return ViewMode(*c.View)
	}
	return r.DefaultView(c.ID)
}

// DefaultPipeline builds a fresh pipeline for kind. The lookup falls back to
// the generic business type, then to a plain status pipeline.
func (r *Registry) DefaultPipeline(businessType BusinessType, kind string) models.Pipeline {
	specs, ok := r.pipelines[businessType][ComponentKind(kind)]
	if !ok {
		specs, ok = r.pipelines[BusinessGeneric][ComponentKind(kind)]
	}
	if !ok {
		specs = r.fallback
	}

	p := models.Pipeline{Stages: make([]models.Stage, 0, len(specs))}
	for i, s := range specs {
		p.Stages = append(p.Stages, models.Stage{ID: s.ID, Name: s.Name, Color: s.Color, Order: i})
	}
	if len(p.Stages) > 0 {
		p.DefaultStageID = p.Stages[0].ID
	}
	return p
}

// DefaultTabs returns a fresh copy of the initial layout for businessType.
func (r *Registry) DefaultTabs(businessType BusinessType) []models.Tab {
	layout, ok := r.tabs[businessType]
	if !ok {
		layout = r.tabs[BusinessGeneric]
	}
	out := make([]models.Tab, len(layout))
	for i, t := range layout {
		out[i] = models.Tab{ID: t.ID, Label: t.Label, Icon: t.Icon}
		out[i].Components = make([]models.Component, len(t.Components))
		for j, c := range t.Components {
			out[i].Components[j] = models.Component{ID: c.ID, Title: c.Title}
		}
	}
	return out
}

// DefaultColors is the palette a freshly claimed tenant starts with.
func DefaultColors() models.Palette {
	return models.Palette{
		"primary":    "#2563eb",
		"secondary":  "#64748b",
		"accent":     "#f59e0b",
		"background": "#ffffff",
		"text":       "#0f172a",
	}
}
