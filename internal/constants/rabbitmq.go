package constants

// Имена очередей
const (
	QueueDiscoveredListings = "console_discovered_listings"
)

// Ключи маршрутизации
const (
	RoutingKeyListingDiscovered = "listing.discovered"
)

const MainExchange = "main_exchange"
