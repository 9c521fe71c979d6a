package pwa

// Manifest is the web app manifest served at /manifest.webmanifest.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description,omitempty"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope,omitempty"`
	Display         string `json:"display"`
	Orientation     string `json:"orientation,omitempty"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Icons           []Icon `json:"icons"`
}

type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

var iconSizes = []string{"72x72", "96x96", "128x128", "144x144", "152x152", "192x192", "384x384", "512x512"}

// DefaultManifest fills in a standalone, portrait manifest with the usual icon set.
func DefaultManifest(name, shortName, themeColor string) Manifest {
	icons := make([]Icon, 0, len(iconSizes))
	for _, size := range iconSizes {
		icons = append(icons, Icon{
			Src:     "/icons/icon-" + size + ".png",
			Sizes:   size,
			Type:    "image/png",
			Purpose: "any maskable",
		})
	}

	return Manifest{
		Name:            name,
		ShortName:       shortName,
		Description:     "Community flood alerts and safe areas on a live map",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		Orientation:     "portrait",
		BackgroundColor: "#ffffff",
		ThemeColor:      themeColor,
		Icons:           icons,
	}
}
