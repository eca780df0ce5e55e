package application

// QuickAccessPlace is a shortcut destination shown on the home screen before
// the rider starts typing.
type QuickAccessPlace struct {
	Icon    string `json:"icon"`
	Label   string `json:"label"`
	Address string `json:"address"`
}

// QuickAccessPlaces returns the static shortcut catalog.
func QuickAccessPlaces() []QuickAccessPlace {
	return []QuickAccessPlace{
		{Icon: "🏠", Label: "Casa", Address: "Av. Principal 123"},
		{Icon: "💼", Label: "Trabajo", Address: "Centro Empresarial"},
		{Icon: "🏥", Label: "Hospital", Address: "Hospital Central"},
		{Icon: "🛒", Label: "Centro Comercial", Address: "Plaza Shopping"},
	}
}
