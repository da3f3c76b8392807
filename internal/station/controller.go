package station

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/acesco/vigia/internal/api"
	"github.com/acesco/vigia/internal/conf"
	"github.com/acesco/vigia/internal/errors"
	"github.com/acesco/vigia/internal/eventlog"
	"github.com/acesco/vigia/internal/logging"
)

var stationLogger *slog.Logger
var stationLevelVar = new(slog.LevelVar)

func init() {
	var err error
	stationLogger, _, err = logging.NewFileLogger("logs/station.log", "station", stationLevelVar)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: stationLevelVar})
		stationLogger = slog.New(fbHandler).With("service", "station")
	}
}

// Controller is the session/role-gated interaction state machine of the
// station. It owns the selected module, the armed flag, the camera
// registry, the area overlay and the per-class config state.
//
// Every operation follows the same shape: local permission and
// precondition checks first (no request on failure), then the server
// round-trip, and only on a success response the local mutation. A failed
// or timed-out request leaves all prior state intact.
type Controller struct {
	mu sync.Mutex

	api      *api.Client
	feed     *eventlog.Log
	settings *conf.Settings

	session     Session
	selected    Module
	armed       bool
	modelActive bool
	cameras     *cameraRegistry
	overlay     *areaOverlay
	config      map[string]bool
}

// NewController wires the state machine to its collaborators.
func NewController(apiClient *api.Client, feed *eventlog.Log, settings *conf.Settings) *Controller {
	return &Controller{
		api:      apiClient,
		feed:     feed,
		settings: settings,
		cameras:  newCameraRegistry(),
		overlay:  &areaOverlay{},
		config:   make(map[string]bool),
	}
}

// Login authenticates with the credentials from settings, establishes the
// session and resets the controller to its default state on camera 1.
func (c *Controller) Login(ctx context.Context) error {
	st := c.settings.Station
	resp, err := c.api.Login(ctx, st.Username, st.Password)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = Session{Identity: st.Username, Role: Role(resp.Role), Token: resp.SessionID}
	c.resetLocked()
	c.mu.Unlock()

	stationLogger.Info("session established", "identity", st.Username, "role", resp.Role)
	return c.refreshAreas(ctx)
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// resetLocked returns the state machine to its defaults: no module
// selected, nothing armed, overlays cleared, camera 1 selected.
func (c *Controller) resetLocked() {
	c.selected = ModuleNone
	c.armed = false
	c.modelActive = false
	c.overlay.reset()
	c.cameras.current = fallbackCamera
	c.config = make(map[string]bool)
}

// SelectModule updates the selected module. A Supervisor may not switch
// away from an armed module; only cancelling it first (by an Admin)
// unlocks the selection.
func (c *Controller) SelectModule(m Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Role == RoleSupervisor && c.armed && c.selected != m {
		c.feed.Add(fmt.Sprintf(msgCancelActiveFirst, c.selected.WireName()), transientEventTTL)
		return errors.Newf("module %s is armed, cancel it first", c.selected).
			Component("station").
			Category(errors.CategoryAuthorization).
			Build()
	}

	c.selected = m
	return nil
}

// Arm issues the set-module request for the selected module on the
// current camera. Arming Temperature pins the view to the thermal camera.
func (c *Controller) Arm(ctx context.Context) error {
	c.mu.Lock()
	if c.selected == ModuleNone {
		c.feed.Add(msgSelectModuleFirst, transientEventTTL)
		c.mu.Unlock()
		return errors.Newf("no module selected").
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	if c.session.Role == RoleSupervisor && c.armed {
		c.mu.Unlock()
		return errors.Newf("supervisor may not rearm an active module").
			Component("station").
			Category(errors.CategoryAuthorization).
			Build()
	}
	module := c.selected
	camera := c.cameras.current
	c.mu.Unlock()

	wire := module.WireName()
	modelActive, err := c.api.SetModule(ctx, &wire, camera, true)
	if err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	c.armed = true
	c.modelActive = modelActive
	if module == ModuleTemperature {
		c.cameras.current = thermalCamera
	}
	c.mu.Unlock()

	c.feed.Add(fmt.Sprintf(msgModuleArmed, wire), transientEventTTL)
	stationLogger.Info("module armed", "module", module.String(), "camera", camera, "model_active", modelActive)

	if module == ModuleTemperature {
		return c.refreshAreas(ctx)
	}
	return nil
}

// Disarm cancels the armed module and resets to the default state.
// Supervisors cannot disarm; only an Admin de-escalates.
func (c *Controller) Disarm(ctx context.Context) error {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return errors.Newf("no module armed").
			Component("station").
			Category(errors.CategoryState).
			Build()
	}
	if c.session.Role == RoleSupervisor {
		c.mu.Unlock()
		return errors.Newf("supervisor may not disarm").
			Component("station").
			Category(errors.CategoryAuthorization).
			Build()
	}
	camera := c.cameras.current
	c.mu.Unlock()

	if _, err := c.api.SetModule(ctx, nil, camera, false); err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	c.feed.Add(msgModuleCancelled, transientEventTTL)
	stationLogger.Info("module disarmed")
	return c.refreshAreas(ctx)
}

// SelectCamera switches the active camera and refetches its area overlay.
// The Temperature module pins the view to the thermal camera while armed.
func (c *Controller) SelectCamera(ctx context.Context, id int) error {
	c.mu.Lock()
	if c.armed && c.selected == ModuleTemperature && id != thermalCamera {
		c.feed.Add(msgTemperatureCameraLock, transientEventTTL)
		c.mu.Unlock()
		return errors.Newf("temperature module pins the view to camera %d", thermalCamera).
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	if !c.cameras.has(id) {
		c.mu.Unlock()
		return errors.Newf("camera %d not registered", id).
			Component("station").
			Category(errors.CategoryNotFound).
			Build()
	}
	c.cameras.current = id
	c.overlay.reset()
	c.mu.Unlock()

	return c.refreshAreas(ctx)
}

// AddCamera registers a new feed. Admin-only, at most four cameras, and
// not while the Temperature module is armed.
func (c *Controller) AddCamera(ctx context.Context, feedURL string) error {
	c.mu.Lock()
	if !c.session.IsAdmin() {
		c.mu.Unlock()
		return errAdminOnly("add camera")
	}
	if c.armed && c.selected == ModuleTemperature {
		c.feed.Add(msgNoAddWhileTemp, transientEventTTL)
		c.mu.Unlock()
		return errors.Newf("cannot add a camera while Temperature is armed").
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	if c.cameras.count() >= maxCameras {
		c.feed.Add(msgCameraLimit, limitEventTTL)
		c.mu.Unlock()
		return errors.Newf("camera limit of %d reached", maxCameras).
			Component("station").
			Category(errors.CategoryLimit).
			Build()
	}
	id := c.cameras.nextID()
	c.mu.Unlock()

	if err := c.api.AddCamera(ctx, id, feedURL); err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	c.cameras.add(id)
	c.mu.Unlock()

	c.feed.Add(fmt.Sprintf(msgCameraAdded, id), transientEventTTL)
	stationLogger.Info("camera added", "camera", id)
	return nil
}

// RemoveCamera deletes a camera slot. Admin-only and gated by the
// operator confirmation phrase; the thermal camera cannot be removed
// while Temperature is armed. If the removed camera was selected, the
// view falls back to camera 1.
func (c *Controller) RemoveCamera(ctx context.Context, id int, confirm string) error {
	c.mu.Lock()
	if !c.session.IsAdmin() {
		c.mu.Unlock()
		return errAdminOnly("remove camera")
	}
	if c.armed && c.selected == ModuleTemperature && id == thermalCamera {
		c.feed.Add(msgNoRemoveThermal, transientEventTTL)
		c.mu.Unlock()
		return errors.Newf("thermal camera is in use by the Temperature module").
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	c.mu.Unlock()

	if err := c.checkConfirmation(confirm); err != nil {
		return err
	}

	if err := c.api.DeleteCamera(ctx, id); err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	wasCurrent := c.cameras.current == id
	c.cameras.remove(id)
	if wasCurrent {
		c.overlay.reset()
	}
	c.mu.Unlock()

	c.feed.Add(fmt.Sprintf(msgCameraRemoved, id), transientEventTTL)
	stationLogger.Info("camera removed", "camera", id)

	if wasCurrent {
		return c.refreshAreas(ctx)
	}
	return nil
}

// ClearEvents wipes the feed. Admin-only, gated by the confirmation phrase.
func (c *Controller) ClearEvents(confirm string) error {
	c.mu.Lock()
	admin := c.session.IsAdmin()
	c.mu.Unlock()

	if !admin {
		return errAdminOnly("clear events")
	}
	if err := c.checkConfirmation(confirm); err != nil {
		return err
	}

	c.feed.Clear()
	c.feed.Add(msgEventsCleared, transientEventTTL)
	return nil
}

// SetConfigOption toggles one per-class detection option and pushes the
// full toggle map to the server. The local map is only updated after the
// server accepts the push.
func (c *Controller) SetConfigOption(ctx context.Context, key string, enabled bool) error {
	c.mu.Lock()
	if !c.armed || !c.session.IsAdmin() {
		c.mu.Unlock()
		return errors.Newf("config is inert unless an admin has a module armed").
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	next := make(map[string]bool, len(c.config)+1)
	for k, v := range c.config {
		next[k] = v
	}
	next[key] = enabled
	camera := c.cameras.current
	c.mu.Unlock()

	if err := c.api.UpdateConfig(ctx, camera, next); err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	c.config = next
	c.mu.Unlock()
	return nil
}

// ConfigState returns a copy of the pushed per-class toggle map.
func (c *Controller) ConfigState() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// surface reports a server rejection to the operator feed. Other error
// kinds (network, timeout) are logged but carry no server message worth
// showing.
func (c *Controller) surface(err error) {
	if errors.HasCategory(err, errors.CategoryServerRejected) {
		c.feed.Add(fmt.Sprintf(msgServerError, err.Error()), transientEventTTL)
		return
	}
	stationLogger.Error("request failed", "error", err)
}

// checkConfirmation compares the supplied phrase against the operator-set
// value from settings. On mismatch no request is issued.
func (c *Controller) checkConfirmation(confirm string) error {
	if confirm != c.settings.Station.ConfirmPhrase {
		c.feed.Add(msgWrongPassword, transientEventTTL)
		return errors.Newf("confirmation phrase mismatch").
			Component("station").
			Category(errors.CategoryConfirmation).
			Build()
	}
	return nil
}

func errAdminOnly(op string) error {
	return errors.Newf("%s requires the Admin role", op).
		Component("station").
		Category(errors.CategoryAuthorization).
		Build()
}

// refreshAreas refetches the authoritative area set for the camera that
// is current at call time. The fetched set is discarded if the selection
// moved on while the request was in flight.
func (c *Controller) refreshAreas(ctx context.Context) error {
	c.mu.Lock()
	camera := c.cameras.current
	c.mu.Unlock()

	areas, err := c.api.LoadAreas(ctx, camera)
	if err != nil {
		c.surface(err)
		return err
	}

	c.mu.Lock()
	if c.cameras.current == camera {
		c.overlay.replace(areas)
	}
	c.mu.Unlock()
	return nil
}

// --- read accessors ---

// SelectedModule returns the currently selected module.
func (c *Controller) SelectedModule() Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// IsArmed reports whether a module is armed.
func (c *Controller) IsArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// ModelActive reports the server-side inference state from the last
// successful arm request.
func (c *Controller) ModelActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelActive
}

// CurrentCamera returns the id of the selected camera.
func (c *Controller) CurrentCamera() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameras.current
}

// Cameras returns the live camera slot ids.
func (c *Controller) Cameras() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameras.cameras()
}

// FeedURL returns the video stream address of the selected camera.
func (c *Controller) FeedURL() string {
	return c.api.VideoFeedURL(c.CurrentCamera())
}

// Areas returns the persisted restricted-area set of the active camera.
func (c *Controller) Areas() []api.Area {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay.areas()
}

// ArmedTarget returns the camera and module a detection tick should poll,
// or ok=false when nothing is armed.
func (c *Controller) ArmedTarget() (camera int, module Module, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.armed {
		return 0, ModuleNone, false
	}
	return c.cameras.current, c.selected, true
}

// --- drawing protocol ---

// drawingAllowedLocked gates the capture sequence: Admin with the
// RestrictedAreas module armed.
func (c *Controller) drawingAllowedLocked() bool {
	return c.session.IsAdmin() && c.armed && c.selected == ModuleRestrictedAreas
}

// Press starts a drawing gesture at a feed-local point.
func (c *Controller) Press(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drawingAllowedLocked() {
		return
	}
	c.overlay.press(x, y)
}

// Move updates the transient rectangle toward the current pointer
// position. Returns the rectangle to render and whether one exists.
func (c *Controller) Move(x, y int) (Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drawingAllowedLocked() {
		return Rect{}, false
	}
	return c.overlay.move(x, y)
}

// TransientRect returns the in-progress rectangle, if any.
func (c *Controller) TransientRect() (Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overlay.transient == nil {
		return Rect{}, false
	}
	return *c.overlay.transient, true
}

// Release ends the gesture. Undersized gestures are discarded without a
// request; otherwise the normalized rectangle is committed and the
// authoritative area set refetched. The server assigns the slot.
func (c *Controller) Release(ctx context.Context, x, y int) error {
	c.mu.Lock()
	if !c.drawingAllowedLocked() {
		c.overlay.drawing = false
		c.overlay.transient = nil
		c.mu.Unlock()
		return nil
	}
	rect, commit := c.overlay.release(x, y)
	camera := c.cameras.current
	c.mu.Unlock()

	if !commit {
		return nil
	}

	if err := c.api.AddRectangle(ctx, camera, rect.X1, rect.Y1, rect.X2, rect.Y2); err != nil {
		c.surface(err)
		return err
	}

	c.feed.Add(fmt.Sprintf(msgAreaSaved, rect.X1, rect.Y1, rect.X2, rect.Y2), 0)
	return c.refreshAreas(ctx)
}

// --- area slot operations ---

// areaOpAllowed gates the slot operations: Admin + RestrictedAreas armed.
func (c *Controller) areaOpAllowed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.IsAdmin() {
		return errAdminOnly("area operation")
	}
	if !c.armed || c.selected != ModuleRestrictedAreas {
		return errors.Newf("restricted-areas module is not armed").
			Component("station").
			Category(errors.CategoryPrecondition).
			Build()
	}
	return nil
}

// SetCurrentArea selects the active drawing slot server-side.
func (c *Controller) SetCurrentArea(ctx context.Context, slot AreaSlot) error {
	if err := c.areaOpAllowed(); err != nil {
		return err
	}
	if err := c.api.SetCurrentArea(ctx, c.CurrentCamera(), int(slot)); err != nil {
		c.surface(err)
		return err
	}
	c.feed.Add(fmt.Sprintf(msgAreaCurrent, slot), transientEventTTL)
	return c.refreshAreas(ctx)
}

// DeleteArea removes one slot's rectangle and refetches the overlay.
func (c *Controller) DeleteArea(ctx context.Context, slot AreaSlot) error {
	if err := c.areaOpAllowed(); err != nil {
		return err
	}
	if err := c.api.DeleteArea(ctx, c.CurrentCamera(), int(slot)); err != nil {
		c.surface(err)
		return err
	}
	c.feed.Add(fmt.Sprintf(msgAreaDeleted, slot), transientEventTTL)
	return c.refreshAreas(ctx)
}

// DeleteAllAreas removes every rectangle of the active camera.
func (c *Controller) DeleteAllAreas(ctx context.Context) error {
	if err := c.areaOpAllowed(); err != nil {
		return err
	}
	if err := c.api.DeleteAllAreas(ctx, c.CurrentCamera()); err != nil {
		c.surface(err)
		return err
	}
	c.feed.Add(msgAllAreasDeleted, transientEventTTL)
	return c.refreshAreas(ctx)
}

// SaveAreas persists the current set server-side.
func (c *Controller) SaveAreas(ctx context.Context) error {
	c.mu.Lock()
	admin := c.session.IsAdmin()
	camera := c.cameras.current
	c.mu.Unlock()
	if !admin {
		return errAdminOnly("save areas")
	}

	if err := c.api.SaveAreas(ctx, camera); err != nil {
		if errors.HasCategory(err, errors.CategoryServerRejected) {
			c.feed.Add(fmt.Sprintf(msgSaveAreasError, err.Error()), transientEventTTL)
		}
		return err
	}
	c.feed.Add(fmt.Sprintf(msgAreasSaved, camera), transientEventTTL)
	return nil
}

// LoadAreasFromFile bulk-imports an area file for the active camera
// (wipe-and-replace server-side) and refetches the authoritative set.
func (c *Controller) LoadAreasFromFile(ctx context.Context, filename string, file io.Reader) error {
	c.mu.Lock()
	admin := c.session.IsAdmin()
	camera := c.cameras.current
	c.mu.Unlock()
	if !admin {
		return errAdminOnly("load areas from file")
	}

	if err := c.api.UploadAreas(ctx, camera, filename, file); err != nil {
		if errors.HasCategory(err, errors.CategoryServerRejected) {
			c.feed.Add(fmt.Sprintf(msgLoadAreasError, err.Error()), transientEventTTL)
		}
		return err
	}
	c.feed.Add(fmt.Sprintf(msgAreasLoaded, filename), transientEventTTL)
	return c.refreshAreas(ctx)
}
