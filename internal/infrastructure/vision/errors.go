package vision

import "errors"

var (
	// ErrModelFile файл модели отсутствует или не читается рантаймом.
	ErrModelFile = errors.New("model file error")

	// ErrConfigFile файл с именами классов отсутствует или некорректен.
	ErrConfigFile = errors.New("config file error")

	// ErrNotLoaded модель не загружена; инференс деградирует мягко.
	ErrNotLoaded = errors.New("model is not loaded")
)
