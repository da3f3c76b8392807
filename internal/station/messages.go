package station

import "time"

// Operator-facing feed messages. The station UI language is Spanish.
const (
	msgCancelActiveFirst     = "Cancela el módulo activo (%s) primero"
	msgSelectModuleFirst     = "Seleccione un módulo primero"
	msgModuleArmed           = "Módulo %s activado"
	msgModuleCancelled       = "Módulo cancelado"
	msgTemperatureCameraLock = "No se puede cambiar de cámara con el módulo Temperatura activo"
	msgNoAddWhileTemp        = "No se puede añadir una cámara con el módulo Temperatura activo"
	msgCameraLimit           = "Límite de 4 cámaras alcanzado."
	msgCameraAdded           = "Cámara %d agregada"
	msgCameraRemoved         = "Cámara %d eliminada"
	msgNoRemoveThermal       = "No se puede eliminar la cámara térmica con el módulo Temperatura activo"
	msgWrongPassword         = "Contraseña incorrecta"
	msgEventsCleared         = "Eventos eliminados"
	msgAreaSaved             = "Área guardada: X1=%d, Y1=%d, X2=%d, Y2=%d"
	msgAreaCurrent           = "Área actual: %d"
	msgAreaDeleted           = "Área %d eliminada"
	msgAllAreasDeleted       = "Todas las áreas eliminadas"
	msgAreasSaved            = "Áreas guardadas en areas/areas_cam%d.json"
	msgAreasLoaded           = "Áreas cargadas desde %s"
	msgVideoRecorded         = "Video grabado"
	msgServerError           = "Error: %s"
	msgSaveAreasError        = "Error al guardar áreas: %s"
	msgLoadAreasError        = "Error al cargar áreas: %s"
)

// Feed entry lifetimes. The camera-limit warning lingers a little longer,
// matching the station UI cadence.
const (
	transientEventTTL = 1 * time.Second
	limitEventTTL     = 3 * time.Second
)
