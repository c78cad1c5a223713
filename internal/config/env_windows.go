//go:build windows

package config

// windowsEnvAliases lets settings files written on Unix expand on Windows.
var windowsEnvAliases = map[string]string{
	"HOSTNAME": "COMPUTERNAME",
	"HOME":     "USERPROFILE",
	"USER":     "USERNAME",
}

func mapEnvKey(key string) string {
	if alias, ok := windowsEnvAliases[key]; ok {
		return alias
	}
	return key
}
