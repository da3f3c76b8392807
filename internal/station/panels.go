package station

import (
	"fmt"
	"strings"
)

// The panels have no state of their own: they are pure derivations of
// the controller and session state, rebuilt after every accepted
// transition.

// Checkbox is one derived panel option.
type Checkbox struct {
	// Key is the server-side config key the checkbox maps to.
	Key string
	// Label is the operator-facing text.
	Label string
	// ReadOnly checkboxes reflect server state and never push config.
	ReadOnly bool
	// Checked mirrors the current detection snapshot where one applies.
	Checked bool
}

// AreaGroup is the per-slot detection group shown for RestrictedAreas:
// an occupancy checkbox plus the per-class toggle matrix of that slot.
type AreaGroup struct {
	Slot     AreaSlot
	Label    string
	Occupied bool
	Classes  []Checkbox
}

// ConfigPanel is the derived configuration panel content.
type ConfigPanel struct {
	Title      string
	Checkboxes []Checkbox
	// Actions lists the control ids of the RestrictedAreas buttons;
	// empty for every other module.
	Actions []Control
}

// DetectionsPanel is the derived live-detection panel content. All
// checkboxes here are read-only reflections of the latest snapshot.
type DetectionsPanel struct {
	Checkboxes []Checkbox
	Areas      []AreaGroup
}

// classSlug lowercases a wire class name and dashes its space, matching
// the server-side config key convention ("Protector auditivo" ->
// "protector-auditivo").
func classSlug(c PPEClass) string {
	return strings.Replace(strings.ToLower(c.WireName()), " ", "-", 1)
}

// ConfigKey is the /update_config key of a PPE class toggle.
func ConfigKey(c PPEClass) string {
	return classSlug(c)
}

// DetectKey is the /update_config key of a per-slot class toggle in the
// RestrictedAreas matrix.
func DetectKey(c PPEClass, slot AreaSlot) string {
	return fmt.Sprintf("detect-%s-%d", classSlug(c), slot)
}

// BuildConfigPanel derives the configuration panel. It stays inert (no
// checkboxes, no actions) unless an Admin has the module armed.
func BuildConfigPanel(sess Session, module Module, armed bool) ConfigPanel {
	panel := ConfigPanel{Title: "Configuraciones"}
	if module != ModuleNone {
		panel.Title = "Configuración de " + module.WireName()
	}
	if module == ModuleNone || !armed || !sess.IsAdmin() {
		return panel
	}

	switch module {
	case ModuleUnsafeActions:
		for _, label := range UnsafeActionLabels {
			panel.Checkboxes = append(panel.Checkboxes, Checkbox{Key: labelSlug(label), Label: label})
		}
	case ModuleTemperature:
		for _, label := range TemperatureLabels {
			panel.Checkboxes = append(panel.Checkboxes, Checkbox{Key: labelSlug(label), Label: label})
		}
	case ModulePPE:
		for _, class := range PPEClasses() {
			panel.Checkboxes = append(panel.Checkboxes, Checkbox{Key: ConfigKey(class), Label: class.WireName()})
		}
	case ModuleRestrictedAreas:
		panel.Actions = []Control{
			ControlAreaSelect1, ControlAreaSelect2,
			ControlAreaDelete1, ControlAreaDelete2,
			ControlAreaDeleteAll, ControlAreaSave, ControlAreaUpload,
		}
	}
	return panel
}

// BuildDetectionsPanel derives the live detection panel from the latest
// snapshot. With nothing armed the panel is empty; detection checkboxes
// are always read-only.
func BuildDetectionsPanel(sess Session, module Module, armed bool, snap Snapshot) DetectionsPanel {
	var panel DetectionsPanel
	if module == ModuleNone || !armed {
		return panel
	}

	switch module {
	case ModuleUnsafeActions:
		panel.Checkboxes = flagBoxes(UnsafeActionLabels, snap)
	case ModuleTemperature:
		panel.Checkboxes = flagBoxes(TemperatureLabels, snap)
	case ModulePPE:
		for _, class := range PPEClasses() {
			panel.Checkboxes = append(panel.Checkboxes, Checkbox{
				Key:      "detect-" + classSlug(class),
				Label:    class.WireName(),
				ReadOnly: true,
				Checked:  snap.Flags[class.WireName()],
			})
		}
	case ModuleRestrictedAreas:
		for _, slot := range AreaSlots() {
			group := AreaGroup{
				Slot:     slot,
				Label:    fmt.Sprintf("Área %d", slot),
				Occupied: snap.AreaOccupied[slot],
			}
			for _, class := range PPEClasses() {
				group.Classes = append(group.Classes, Checkbox{
					Key:   DetectKey(class, slot),
					Label: class.WireName(),
					// The matrix toggles are config, editable by Admin only.
					ReadOnly: !sess.IsAdmin(),
				})
			}
			panel.Areas = append(panel.Areas, group)
		}
	}
	return panel
}

func flagBoxes(labels []string, snap Snapshot) []Checkbox {
	out := make([]Checkbox, 0, len(labels))
	for _, label := range labels {
		out = append(out, Checkbox{
			Key:      "detect-" + labelSlug(label),
			Label:    label,
			ReadOnly: true,
			Checked:  snap.Flags[label],
		})
	}
	return out
}

func labelSlug(label string) string {
	return strings.Replace(strings.ToLower(label), " ", "-", 1)
}
