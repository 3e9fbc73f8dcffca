package fdms

import "fmt"

type Environment int

const (
	Test Environment = iota
	Prod
)

func (e Environment) BaseURL() string {
	switch e {
	case Prod:
		return "https://fdmsapi.zimra.co.zw"
	case Test:
		return "https://fdmsapitest.zimra.co.zw"
	}
	panic("Invalid environment")
}

// EnvironmentFromName resolves a config value ("test", "prod") to an Environment.
func EnvironmentFromName(name string) (Environment, error) {
	switch name {
	case "test":
		return Test, nil
	case "prod", "production":
		return Prod, nil
	}
	return Test, fmt.Errorf("unknown environment name: %q", name)
}
