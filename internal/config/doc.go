// Package config loads the optional ebtables-translate configuration file.
//
// The file is HCL (or JSON when it ends in .json). Expressions may read the
// process environment through the env object:
//
//	table         = "filter"
//	output_prefix = env.NFT_PREFIX
//	log_level     = "debug"
//
//	ethertype "PROFINET" {
//	  value   = "0x8892"
//	  aliases = ["pn"]
//	}
//
// A missing file is not an error; Defaults applies.
package config
