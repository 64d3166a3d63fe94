package unitmap

import "strings"

// MatchesUnit reports whether unit identifies driver under config.
//
// By default the driver name must occur as a substring of the unit name or of
// one of its aliases. UnitInDriver reverses the test and EitherDirection accepts
// both. Empty names never match.
func MatchesUnit(driver, unit string, config MatchConfig) bool {
	if strings.TrimSpace(driver) == "" || unit == "" {
		return false
	}
	tokens := append([]string{unit}, aliasesOf(unit, config)...)
	for _, token := range tokens {
		if matchToken(driver, token, config) {
			return true
		}
	}
	return false
}

// aliasesOf looks the unit up in config.Aliases. Without CaseSensitive the
// lookup ignores case, since configuration keys may arrive lowercased.
func aliasesOf(unit string, config MatchConfig) []string {
	if aliases, ok := config.Aliases[unit]; ok || config.CaseSensitive {
		return aliases
	}
	for name, aliases := range config.Aliases {
		if strings.EqualFold(name, unit) {
			return aliases
		}
	}
	return nil
}

func matchToken(driver, token string, config MatchConfig) bool {
	driver = strings.TrimSpace(driver)
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if !config.CaseSensitive {
		driver = strings.ToLower(driver)
		token = strings.ToLower(token)
	}
	switch config.Direction {
	case UnitInDriver:
		return strings.Contains(driver, token)
	case EitherDirection:
		return strings.Contains(token, driver) || strings.Contains(driver, token)
	default:
		return strings.Contains(token, driver)
	}
}
