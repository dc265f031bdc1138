package configs

import "errors"

const configKey = "configs"

var errGenerationProviderNotEnabled = errors.New("no enabled ai provider for card generation")
