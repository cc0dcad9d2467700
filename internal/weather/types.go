package weather

// kelvinOffset converts Kelvin to Celsius.
const kelvinOffset = 273.15

// noDescription is used when the payload has no weather entries.
const noDescription = "날씨 정보 없음"

type conditionsResponse struct {
	Current *struct {
		FeelsLike *float64 `json:"feels_like"`
		Weather   []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"current"`
}

// apiError is the error body returned by the weather API.
type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}
