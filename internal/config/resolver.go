package config

import (
	"grimm.is/ebtranslate/internal/ethertypes"
)

// Resolver loads the ethertypes database and appends the configured
// ethertype blocks. The file keeps precedence over the blocks.
func (c *Config) Resolver() (*ethertypes.DB, error) {
	db, err := ethertypes.Load(c.EthertypesFile)
	if err != nil {
		return nil, err
	}
	for _, e := range c.Ethertypes {
		t, err := e.Type()
		if err != nil {
			return nil, err
		}
		db.Add(ethertypes.Entry{Name: e.Name, Type: t, Aliases: e.Aliases})
	}
	return db, nil
}
