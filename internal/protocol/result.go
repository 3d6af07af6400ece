package protocol

// StatusBlock is attached to every action response: vitals deltas over
// the action plus the one-shot event slots captured at read time.
type StatusBlock struct {
	Health      float64    `json:"health"`
	Food        float64    `json:"food"`
	HealthDelta float64    `json:"health_delta"`
	FoodDelta   float64    `json:"food_delta"`
	Events      EventSlots `json:"events"`
}

// ActionResult is the common envelope for foreground action results.
// Actions embed it and add their own count/timing fields.
type ActionResult struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	TimedOut bool `json:"timed_out,omitempty"`
	Stalled  bool `json:"stalled,omitempty"`

	Status *StatusBlock `json:"status,omitempty"`
}

func Failure(code, message string) ActionResult {
	return ActionResult{OK: false, Code: code, Message: message}
}

// MissingItem describes one shortfall entry in a MissingResources
// payload so a caller can remediate and retry.
type MissingItem struct {
	Item     string `json:"item"`
	Required int    `json:"required"`
	Have     int    `json:"have"`
	Missing  int    `json:"missing"`
}
