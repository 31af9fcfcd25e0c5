package presets

import "github.com/huangang/bizboard/internal/models"

var defaultViews = map[ComponentKind]viewSpec{
	KindClients:      {def: ViewTable, available: []ViewMode{ViewTable, ViewCards, ViewList}},
	KindLeads:        {def: ViewKanban, available: []ViewMode{ViewKanban, ViewTable, ViewCards}},
	KindAppointments: {def: ViewCalendar, available: []ViewMode{ViewCalendar, ViewList, ViewTable}},
	KindOrders:       {def: ViewKanban, available: []ViewMode{ViewKanban, ViewTable, ViewList}},
	KindInvoices:     {def: ViewTable, available: []ViewMode{ViewTable, ViewList, ViewKanban}},
	KindProducts:     {def: ViewGallery, available: []ViewMode{ViewGallery, ViewTable, ViewCards}},
	KindInventory:    {def: ViewTable, available: []ViewMode{ViewTable, ViewCards}},
	KindProjects:     {def: ViewKanban, available: []ViewMode{ViewKanban, ViewTable, ViewTimeline}},
	KindTasks:        {def: ViewList, available: []ViewMode{ViewList, ViewKanban, ViewCalendar, ViewTable}},
	KindStaff:        {def: ViewCards, available: []ViewMode{ViewCards, ViewTable}},
	KindMenu:         {def: ViewGallery, available: []ViewMode{ViewGallery, ViewList, ViewTable}},
	KindReviews:      {def: ViewCards, available: []ViewMode{ViewCards, ViewList}},
	KindDocuments:    {def: ViewList, available: []ViewMode{ViewList, ViewTable, ViewKanban}},
	KindMessages:     {def: ViewList, available: []ViewMode{ViewList}},
}

var genericStatusPipeline = []StageSpec{
	{ID: "new", Name: "New", Color: "#3b82f6"},
	{ID: "in_progress", Name: "In Progress", Color: "#f59e0b"},
	{ID: "done", Name: "Done", Color: "#10b981"},
}

var defaultPipelines = map[BusinessType]map[ComponentKind][]StageSpec{
	BusinessGeneric: {
		KindLeads: {
			{ID: "new", Name: "New", Color: "#3b82f6"},
			{ID: "contacted", Name: "Contacted", Color: "#8b5cf6"},
			{ID: "qualified", Name: "Qualified", Color: "#f59e0b"},
			{ID: "proposal", Name: "Proposal", Color: "#ec4899"},
		},
		KindOrders: {
			{ID: "pending", Name: "Pending", Color: "#f59e0b"},
			{ID: "processing", Name: "Processing", Color: "#3b82f6"},
			{ID: "completed", Name: "Completed", Color: "#10b981"},
		},
		KindInvoices: {
			{ID: "draft", Name: "Draft", Color: "#94a3b8"},
			{ID: "sent", Name: "Sent", Color: "#3b82f6"},
			{ID: "paid", Name: "Paid", Color: "#10b981"},
			{ID: "overdue", Name: "Overdue", Color: "#ef4444"},
		},
		KindProjects: {
			{ID: "planning", Name: "Planning", Color: "#8b5cf6"},
			{ID: "active", Name: "Active", Color: "#3b82f6"},
			{ID: "review", Name: "Review", Color: "#f59e0b"},
			{ID: "complete", Name: "Complete", Color: "#10b981"},
		},
		KindTasks: {
			{ID: "todo", Name: "To Do", Color: "#94a3b8"},
			{ID: "doing", Name: "Doing", Color: "#3b82f6"},
			{ID: "done", Name: "Done", Color: "#10b981"},
		},
		KindDocuments: {
			{ID: "draft", Name: "Draft", Color: "#94a3b8"},
			{ID: "sent", Name: "Sent", Color: "#3b82f6"},
			{ID: "signed", Name: "Signed", Color: "#10b981"},
		},
	},
	BusinessSalon: {
		KindLeads: {
			{ID: "inquiry", Name: "Inquiry", Color: "#3b82f6"},
			{ID: "consultation", Name: "Consultation", Color: "#8b5cf6"},
			{ID: "booked", Name: "Booked", Color: "#10b981"},
		},
		KindAppointments: {
			{ID: "scheduled", Name: "Scheduled", Color: "#3b82f6"},
			{ID: "confirmed", Name: "Confirmed", Color: "#8b5cf6"},
			{ID: "checked_in", Name: "Checked In", Color: "#f59e0b"},
			{ID: "completed", Name: "Completed", Color: "#10b981"},
		},
	},
	BusinessRestaurant: {
		KindOrders: {
			{ID: "received", Name: "Received", Color: "#3b82f6"},
			{ID: "preparing", Name: "Preparing", Color: "#f59e0b"},
			{ID: "ready", Name: "Ready", Color: "#8b5cf6"},
			{ID: "served", Name: "Served", Color: "#10b981"},
		},
	},
	BusinessAgency: {
		KindLeads: {
			{ID: "lead", Name: "Lead", Color: "#3b82f6"},
			{ID: "discovery", Name: "Discovery", Color: "#8b5cf6"},
			{ID: "proposal", Name: "Proposal Sent", Color: "#f59e0b"},
			{ID: "negotiation", Name: "Negotiation", Color: "#ec4899"},
		},
		KindProjects: {
			{ID: "brief", Name: "Brief", Color: "#94a3b8"},
			{ID: "in_progress", Name: "In Progress", Color: "#3b82f6"},
			{ID: "client_review", Name: "Client Review", Color: "#f59e0b"},
			{ID: "delivered", Name: "Delivered", Color: "#10b981"},
		},
	},
	BusinessContractor: {
		KindLeads: {
			{ID: "inquiry", Name: "Inquiry", Color: "#3b82f6"},
			{ID: "site_visit", Name: "Site Visit", Color: "#8b5cf6"},
			{ID: "estimate_sent", Name: "Estimate Sent", Color: "#f59e0b"},
		},
		KindProjects: {
			{ID: "scheduled", Name: "Scheduled", Color: "#94a3b8"},
			{ID: "in_progress", Name: "In Progress", Color: "#3b82f6"},
			{ID: "inspection", Name: "Inspection", Color: "#f59e0b"},
			{ID: "complete", Name: "Complete", Color: "#10b981"},
		},
	},
	BusinessRetail: {
		KindOrders: {
			{ID: "placed", Name: "Placed", Color: "#3b82f6"},
			{ID: "packed", Name: "Packed", Color: "#f59e0b"},
			{ID: "shipped", Name: "Shipped", Color: "#8b5cf6"},
			{ID: "delivered", Name: "Delivered", Color: "#10b981"},
		},
	},
	BusinessFitness: {
		KindLeads: {
			{ID: "trial", Name: "Free Trial", Color: "#3b82f6"},
			{ID: "follow_up", Name: "Follow Up", Color: "#f59e0b"},
			{ID: "member", Name: "Member", Color: "#10b981"},
		},
	},
	BusinessRealEstate: {
		KindLeads: {
			{ID: "new", Name: "New", Color: "#3b82f6"},
			{ID: "showing", Name: "Showing", Color: "#8b5cf6"},
			{ID: "offer", Name: "Offer", Color: "#f59e0b"},
			{ID: "under_contract", Name: "Under Contract", Color: "#ec4899"},
			{ID: "closed", Name: "Closed", Color: "#10b981"},
		},
	},
	BusinessConsultancy: {
		KindProjects: {
			{ID: "scoping", Name: "Scoping", Color: "#94a3b8"},
			{ID: "engaged", Name: "Engaged", Color: "#3b82f6"},
			{ID: "wrap_up", Name: "Wrap Up", Color: "#f59e0b"},
			{ID: "closed", Name: "Closed", Color: "#10b981"},
		},
	},
}

func tab(id, label, icon string, kinds ...ComponentKind) models.Tab {
	t := models.Tab{ID: id, Label: label, Icon: icon}
	for _, k := range kinds {
		t.Components = append(t.Components, models.Component{ID: string(k)})
	}
	return t
}

var defaultTabLayouts = map[BusinessType][]models.Tab{
	BusinessGeneric: {
		tab("clients", "Clients", "users", KindClients, KindLeads),
		tab("work", "Work", "briefcase", KindProjects, KindTasks),
		tab("billing", "Billing", "receipt", KindInvoices),
	},
	BusinessSalon: {
		tab("schedule", "Schedule", "calendar", KindAppointments),
		tab("clients", "Clients", "users", KindClients, KindLeads),
		tab("team", "Team", "scissors", KindStaff, KindReviews),
		tab("billing", "Billing", "receipt", KindInvoices),
	},
	BusinessRestaurant: {
		tab("orders", "Orders", "utensils", KindOrders),
		tab("menu", "Menu", "book-open", KindMenu, KindInventory),
		tab("reservations", "Reservations", "calendar", KindAppointments),
		tab("team", "Team", "users", KindStaff),
	},
	BusinessAgency: {
		tab("pipeline", "Pipeline", "funnel", KindLeads, KindClients),
		tab("projects", "Projects", "folder", KindProjects, KindTasks),
		tab("billing", "Billing", "receipt", KindInvoices, KindDocuments),
	},
	BusinessContractor: {
		tab("jobs", "Jobs", "hammer", KindProjects, KindAppointments),
		tab("clients", "Clients", "users", KindLeads, KindClients),
		tab("billing", "Billing", "receipt", KindInvoices, KindDocuments),
	},
	BusinessRetail: {
		tab("orders", "Orders", "shopping-bag", KindOrders),
		tab("catalog", "Catalog", "package", KindProducts, KindInventory),
		tab("customers", "Customers", "users", KindClients, KindReviews),
	},
	BusinessFitness: {
		tab("classes", "Classes", "calendar", KindAppointments),
		tab("members", "Members", "users", KindClients, KindLeads),
		tab("team", "Team", "dumbbell", KindStaff),
	},
	BusinessRealEstate: {
		tab("leads", "Leads", "home", KindLeads, KindClients),
		tab("showings", "Showings", "calendar", KindAppointments),
		tab("documents", "Documents", "file-signature", KindDocuments),
	},
	BusinessConsultancy: {
		tab("engagements", "Engagements", "briefcase", KindProjects, KindTasks),
		tab("clients", "Clients", "users", KindClients, KindLeads),
		tab("billing", "Billing", "receipt", KindInvoices, KindDocuments),
	},
}
