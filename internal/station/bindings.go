package station

import (
	"context"
	"io"

	"github.com/acesco/vigia/internal/errors"
)

// Control identifies one operator-facing control. Each control activation
// maps to exactly one controller method call; the mapping lives in the
// Bindings table so it can be tested independently of any rendering.
type Control string

const (
	ControlModuleUnsafeActions   Control = "module-acciones-inseguras"
	ControlModuleTemperature     Control = "module-temperatura"
	ControlModulePPE             Control = "module-epps"
	ControlModuleRestrictedAreas Control = "module-areas-restringidas"

	ControlApplyModule  Control = "apply-module"
	ControlCancelModule Control = "cancel-module"

	ControlCameraTab    Control = "camera-tab"
	ControlAddCamera    Control = "add-camera"
	ControlRemoveCamera Control = "remove-camera"

	ControlClearEvents Control = "clear-events"

	ControlAreaSelect1   Control = "area-select-1"
	ControlAreaSelect2   Control = "area-select-2"
	ControlAreaDelete1   Control = "area-delete-1"
	ControlAreaDelete2   Control = "area-delete-2"
	ControlAreaDeleteAll Control = "area-delete-all"
	ControlAreaSave      Control = "area-save"
	ControlAreaUpload    Control = "area-upload"
)

// Args carries the activation parameters a control may need.
type Args struct {
	Camera   int
	URL      string
	Confirm  string
	Filename string
	File     io.Reader
}

// Handler dispatches one control activation to the controller.
type Handler func(ctx context.Context, c *Controller, args Args) error

// Bindings returns the declarative control-to-action table.
func Bindings() map[Control]Handler {
	return map[Control]Handler{
		ControlModuleUnsafeActions: func(ctx context.Context, c *Controller, args Args) error {
			return c.SelectModule(ModuleUnsafeActions)
		},
		ControlModuleTemperature: func(ctx context.Context, c *Controller, args Args) error {
			return c.SelectModule(ModuleTemperature)
		},
		ControlModulePPE: func(ctx context.Context, c *Controller, args Args) error {
			return c.SelectModule(ModulePPE)
		},
		ControlModuleRestrictedAreas: func(ctx context.Context, c *Controller, args Args) error {
			return c.SelectModule(ModuleRestrictedAreas)
		},
		ControlApplyModule: func(ctx context.Context, c *Controller, args Args) error {
			return c.Arm(ctx)
		},
		ControlCancelModule: func(ctx context.Context, c *Controller, args Args) error {
			return c.Disarm(ctx)
		},
		ControlCameraTab: func(ctx context.Context, c *Controller, args Args) error {
			return c.SelectCamera(ctx, args.Camera)
		},
		ControlAddCamera: func(ctx context.Context, c *Controller, args Args) error {
			return c.AddCamera(ctx, args.URL)
		},
		ControlRemoveCamera: func(ctx context.Context, c *Controller, args Args) error {
			return c.RemoveCamera(ctx, args.Camera, args.Confirm)
		},
		ControlClearEvents: func(ctx context.Context, c *Controller, args Args) error {
			return c.ClearEvents(args.Confirm)
		},
		ControlAreaSelect1: func(ctx context.Context, c *Controller, args Args) error {
			return c.SetCurrentArea(ctx, AreaSlot1)
		},
		ControlAreaSelect2: func(ctx context.Context, c *Controller, args Args) error {
			return c.SetCurrentArea(ctx, AreaSlot2)
		},
		ControlAreaDelete1: func(ctx context.Context, c *Controller, args Args) error {
			return c.DeleteArea(ctx, AreaSlot1)
		},
		ControlAreaDelete2: func(ctx context.Context, c *Controller, args Args) error {
			return c.DeleteArea(ctx, AreaSlot2)
		},
		ControlAreaDeleteAll: func(ctx context.Context, c *Controller, args Args) error {
			return c.DeleteAllAreas(ctx)
		},
		ControlAreaSave: func(ctx context.Context, c *Controller, args Args) error {
			return c.SaveAreas(ctx)
		},
		ControlAreaUpload: func(ctx context.Context, c *Controller, args Args) error {
			return c.LoadAreasFromFile(ctx, args.Filename, args.File)
		},
	}
}

// Dispatch activates one control through the bindings table.
func Dispatch(ctx context.Context, c *Controller, control Control, args Args) error {
	handler, ok := Bindings()[control]
	if !ok {
		return errors.Newf("unknown control %q", control).
			Component("station").
			Category(errors.CategoryNotFound).
			Build()
	}
	return handler(ctx, c, args)
}
