package builtin

import "github.com/matzehuels/snhsdiag/pkg/diagram"

// dfdFont is shared by every preset of the high-resolution DFD.
var dfdFont = diagram.Attrs{"fontname": "Helvetica-Bold", "fontsize": "32"}

// DFD style presets.
var (
	DFDActor = diagram.NewStyle("actor", diagram.CategoryActor, dfdFont.Merge(diagram.Attrs{
		"shape": "rect", "style": "rounded,filled", "fillcolor": "#E6F2FF",
	}))
	DFDSystem = diagram.NewStyle("system", diagram.CategorySystem, dfdFont.Merge(diagram.Attrs{
		"shape": "component", "style": "filled", "fillcolor": "#FFF4D9",
	}))
	DFDModule = diagram.NewStyle("module", diagram.CategoryModule, dfdFont.Merge(diagram.Attrs{
		"shape": "oval", "style": "filled", "fillcolor": "#E8F7E4",
	}))
	DFDDatabase = diagram.NewStyle("database", diagram.CategoryDatabase, dfdFont.Merge(diagram.Attrs{
		"shape": "cylinder", "style": "filled", "fillcolor": "#F3E6FF",
	}))
	// DFDNote is declared with the other presets but no DFD node uses it.
	DFDNote = diagram.NewStyle("note", diagram.CategoryNote, diagram.Attrs{
		"shape": "note", "fontsize": "22", "fontname": "Helvetica-Bold",
	})
)

// fs sets the edge label font size.
func fs(size string) diagram.Attrs { return diagram.Attrs{"fontsize": size} }

func fsWith(size string, attrs diagram.Attrs) diagram.Attrs { return fs(size).Merge(attrs) }

var (
	dashed   = diagram.Attrs{"style": "dashed"}
	dotted   = diagram.Attrs{"style": "dotted", "arrowhead": "none"}
	darkRed  = diagram.Attrs{"color": "#8B0000"}
	dfdGraph = diagram.Attrs{
		"rankdir":  "TB",
		"fontsize": "32",
		"dpi":      "480",
		"ranksep":  "4.4",
		"nodesep":  "0.2",
		"size":     "6,20!",
		"splines":  "true",
		"pad":      "0.8",
	}
)

// BuildDataFlow declares the vertical high-resolution data-flow diagram of the
// SNHS management system: actors, the frontend/backend pair, the PostgreSQL
// store and the nine functional modules.
func BuildDataFlow() (*diagram.Graph, error) {
	return diagram.NewBuilder("SNHS_DFD").
		Format("png").
		Attr(dfdGraph).
		EdgeDefaults(diagram.Attrs{"fontname": "Helvetica-Bold"}).
		// Actors
		Node("Admin", "Admin", DFDActor).
		Node("Adviser", "Adviser (Teacher)", DFDActor).
		Node("StudentActor", "Student (Data Subject)", DFDActor).
		// Frontend & Backend
		Node("Frontend", "Frontend (React)\nAdmin & Adviser UIs", DFDSystem).
		Node("Backend", "Backend API\nNode.js + Express", DFDSystem).
		Node("Postgres", "PostgreSQL\nStudent / Adviser / Grades / Attendance / SF2/SF9 / KPI", DFDDatabase).
		// Core modules
		Node("SY", "School Year Management", DFDModule).
		Node("Students", "Student Management", DFDModule).
		Node("Advisers", "Adviser Management", DFDModule).
		Node("Subjects", "Subject Management", DFDModule).
		Node("Grades", "Grade Management (SF9)", DFDModule).
		Node("Attendance", "Attendance Tracking (SF2)", DFDModule).
		Node("Analytics", "Analytics & KPIs", DFDModule).
		Node("Reco", "Recommendations Engine", DFDModule).
		Node("Reports", "Reports / Exports", DFDModule).
		// Transport and storage
		Edge("Frontend", "Backend", "REST API (JSON)", fs("28")).
		Edge("Backend", "Postgres", "SQL Queries / CRUD", fs("28")).
		Edge("Admin", "Frontend", "Login, Manage, View Analytics", fs("28")).
		Edge("Adviser", "Frontend", "Login, Edit Grades/Attendance", fs("28")).
		Edge("StudentActor", "Frontend", "(data subject)", fsWith("32", dashed)).
		// UI-driven management
		Edge("Frontend", "Students", "Create / Update / View Students", fsWith("32", dashed)).
		Edge("Frontend", "Advisers", "Create / Update / View Advisers", fsWith("32", dashed)).
		Edge("Frontend", "Subjects", "View / Assign Subjects", fsWith("32", dashed)).
		Edge("Frontend", "SY", "Create / Switch School Year", fsWith("32", dashed)).
		Edge("Backend", "Students", "manages", fs("32")).
		Edge("Backend", "Advisers", "manages", fs("32")).
		Edge("Backend", "Subjects", "manages", fs("32")).
		Edge("Backend", "SY", "manages", fs("32")).
		// SF9 / SF2 encoding
		Edge("Frontend", "Grades", "Upload / Input Grades (SF9)", fs("32")).
		Edge("Frontend", "Attendance", "Upload / Input Attendance (SF2)", fs("32")).
		Edge("Grades", "Backend", "submit grades", fsWith("32", dotted)).
		Edge("Attendance", "Backend", "submit attendance", fsWith("32", dotted)).
		// Tables
		Edge("Students", "Postgres", "students table", fs("32")).
		Edge("Advisers", "Postgres", "advisers table", fs("32")).
		Edge("Subjects", "Postgres", "subjects table", fs("32")).
		Edge("Grades", "Postgres", "grades table (SF9)", fs("32")).
		Edge("Attendance", "Postgres", "attendance table (SF2)", fs("32")).
		// Analytics and recommendations
		Edge("Backend", "Analytics", "aggregate KPIs", fs("32")).
		Edge("Analytics", "Postgres", "read aggregated data", fs("32")).
		Edge("Reco", "Analytics", "feed insights", fs("32")).
		Edge("Backend", "Reco", "invoke recommendations", fs("32")).
		Edge("Analytics", "Reports", "generate charts/reports", fs("32")).
		Edge("Reports", "Frontend", "view", fs("32")).
		Edge("Attendance", "Analytics", "SF2 encoding status", fsWith("32", darkRed)).
		Edge("Grades", "Analytics", "SF9 completion status", fsWith("32", darkRed)).
		// Declared last, so it pads no node above.
		Trailer("node", diagram.Attrs{"margin": "0.35"}).
		Build()
}
