package api

// StatusSuccess is the status value the server uses for accepted requests.
// Anything else is a rejection and carries a message.
const StatusSuccess = "success"

// statusEnvelope is the common part of every server response.
type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
}

// SetModuleResponse is returned by POST /set_module.
type SetModuleResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	ModelActive bool   `json:"model_active"`
}

// Area is a persisted restricted-area rectangle in feed pixel space.
// Coordinates are normalized server-side: x1<=x2 and y1<=y2.
type Area struct {
	X1       int `json:"x1"`
	Y1       int `json:"y1"`
	X2       int `json:"x2"`
	Y2       int `json:"y2"`
	AreaType int `json:"area_type"`
}

// areasResponse is returned by GET /load_areas.
type areasResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Areas   []Area `json:"areas"`
}

// videosResponse is returned by GET /videos.
type videosResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Videos  []string `json:"videos"`
}

// Detections is the payload of GET /detections. Depending on the armed
// module the server fills either the per-class flag map or the per-slot
// occupancy map; the other stays empty.
type Detections struct {
	// Flags maps a wire class name (e.g. "Casco") to its presence flag.
	Flags map[string]bool
	// PersonInArea maps an area slot ("1", "2") to its occupancy flag.
	PersonInArea map[string]bool
}

// detectionsResponse is the wire form of GET /detections.
type detectionsResponse struct {
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	Detections   map[string]bool `json:"detections,omitempty"`
	PersonInArea map[string]bool `json:"person_in_area,omitempty"`
}

// Request bodies. Field names follow the server contract exactly.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type setModuleRequest struct {
	Module   *string `json:"module"`
	CameraID int     `json:"camera_id"`
	Active   bool    `json:"active"`
}

type updateConfigRequest struct {
	CameraID int             `json:"camera_id"`
	Config   map[string]bool `json:"config"`
}

type addCameraRequest struct {
	CameraID int    `json:"camera_id"`
	URL      string `json:"url"`
}

type deleteCameraRequest struct {
	CameraID int `json:"camera_id"`
}

type addRectangleRequest struct {
	CameraID int `json:"camera_id"`
	X1       int `json:"x1"`
	Y1       int `json:"y1"`
	X2       int `json:"x2"`
	Y2       int `json:"y2"`
}

type cameraOnlyRequest struct {
	CameraID int `json:"camera_id"`
}

type setCurrentAreaRequest struct {
	CameraID int `json:"camera_id"`
	Area     int `json:"area"`
}

type deleteAreaRequest struct {
	CameraID int `json:"camera_id"`
	AreaType int `json:"area_type"`
}
