package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Dataset    DatasetStatus     `json:"dataset"`
	Caches     CacheStatus       `json:"caches"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
}

// DatasetStatus describes the currently loaded weather snapshot.
type DatasetStatus struct {
	Loaded          bool       `json:"loaded"`
	LoadedAt        *Timestamp `json:"loadedAt,omitempty"`
	Points          int        `json:"points"`
	IndexCells      int        `json:"indexCells"`
	GridSizeDegrees float64    `json:"gridSizeDegrees"`
}

// CacheStatus reports the fill level of the in-process caches.
type CacheStatus struct {
	AggregatorEntries int `json:"aggregatorEntries"`
	CalculatorEntries int `json:"calculatorEntries"`
	DistanceEntries   int `json:"distanceEntries"`
	GeocodeEntries    int `json:"geocodeEntries"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
