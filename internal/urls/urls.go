package urls

// AutomationSetup describes enabling the thermostat's automation port, which
// must be switched on before any client can connect.
const AutomationSetup = "https://www.home-assistant.io/integrations/aprilaire/"
