package builtin

import "github.com/matzehuels/snhsdiag/pkg/diagram"

var archFont = diagram.Attrs{"fontname": "Helvetica", "fontsize": "14"}

// Architecture style presets.
var (
	ArchActor = diagram.NewStyle("actor", diagram.CategoryActor, archFont.Merge(diagram.Attrs{
		"shape": "rect", "style": "rounded,filled", "fillcolor": "#E6F2FF",
	}))
	ArchLayer = diagram.NewStyle("layer", diagram.CategoryLayer, archFont.Merge(diagram.Attrs{
		"shape": "box3d", "style": "filled", "fillcolor": "#FFF4D9",
	}))
	ArchModule = diagram.NewStyle("module", diagram.CategoryModule, archFont.Merge(diagram.Attrs{
		"shape": "folder", "style": "filled", "fillcolor": "#E8F7E4", "fontsize": "18",
	}))
	ArchDatabase = diagram.NewStyle("database", diagram.CategoryDatabase, archFont.Merge(diagram.Attrs{
		"shape": "cylinder", "style": "filled", "fillcolor": "#F3E6FF",
	}))
)

// BuildArchitecture declares the layered architecture diagram: two actors,
// the UI, application and data layers, and the backend modules.
func BuildArchitecture() (*diagram.Graph, error) {
	dashed := diagram.Attrs{"style": "dashed"}
	dotted := diagram.Attrs{"style": "dotted"}

	return diagram.NewBuilder("SNHS_Architecture").
		Format("png").
		Attr(diagram.Attrs{"rankdir": "TB", "fontsize": "14", "fontname": "Helvetica"}).
		Node("Admin", "Admin", ArchActor).
		Node("Adviser", "Adviser (Teacher)", ArchActor).
		Node("Frontend", "Frontend (React)\nUser Interface Layer", ArchLayer).
		Node("Backend", "Backend API (Node.js + Express)\nApplication Layer", ArchLayer).
		Node("Database", "Database (PostgreSQL)\nData Layer", ArchDatabase).
		// Modules inside the backend
		Node("Grades", "Grade Management (SF9)", ArchModule).
		Node("Attendance", "Attendance Tracking (SF2)", ArchModule).
		Node("Analytics", "Analytics & KPI Monitoring", ArchModule).
		Node("SY", "School Year Management", ArchModule).
		Node("Reco", "Recommendations Engine", ArchModule).
		Edge("Admin", "Frontend", "Access via Browser", nil).
		Edge("Adviser", "Frontend", "Access via Browser", nil).
		Edge("Frontend", "Backend", "REST API (JSON)", nil).
		Edge("Backend", "Database", "SQL Queries", nil).
		Edge("Backend", "Grades", "", dashed).
		Edge("Backend", "Attendance", "", dashed).
		Edge("Backend", "Analytics", "", dashed).
		Edge("Backend", "SY", "", dashed).
		Edge("Backend", "Reco", "", dashed).
		Edge("Grades", "Database", "", dotted).
		Edge("Attendance", "Database", "", dotted).
		Edge("Analytics", "Database", "", dotted).
		Build()
}
