package packets

import "github.com/danmuck/mcwire/internal/protocol/schema"

// Catalogues by state and direction. Serverbound is client to server.
var (
	HandshakeServerbound = newCatalog("handshake/serverbound", func(c *schema.Catalog) {
		schema.Register(c, HandshakeRecord)
	})

	StatusServerbound = newCatalog("status/serverbound", func(c *schema.Catalog) {
		schema.Register(c, StatusRequestRecord)
		schema.Register(c, PingRequestRecord)
	})
	StatusClientbound = newCatalog("status/clientbound", func(c *schema.Catalog) {
		schema.Register(c, StatusResponseRecord)
		schema.Register(c, PongResponseRecord)
	})

	LoginServerbound = newCatalog("login/serverbound", func(c *schema.Catalog) {
		schema.Register(c, LoginStartRecord)
	})
	LoginClientbound = newCatalog("login/clientbound", func(c *schema.Catalog) {
		schema.Register(c, LoginSuccessRecord)
		schema.Register(c, SetCompressionRecord)
	})

	PlayServerbound = newCatalog("play/serverbound", func(c *schema.Catalog) {
		schema.Register(c, PluginMessageRecord)
		schema.Register(c, ClientCommandRecord)
	})
	PlayClientbound = newCatalog("play/clientbound", func(c *schema.Catalog) {
		schema.Register(c, EntityLookRecord)
	})
)

func newCatalog(name string, fill func(*schema.Catalog)) *schema.Catalog {
	c := schema.NewCatalog(name)
	fill(c)
	return c
}
