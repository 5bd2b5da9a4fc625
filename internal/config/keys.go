// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func sortedKeys(m map[string]bool) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Keys returns every recognized configuration key in sorted order.
func Keys() []string {
	keys := lo.Keys(defaults)
	sort.Strings(keys)
	return keys
}

// UnknownKeys returns the keys set in v that no setting reads, in sorted
// order. Typos in the config file show up here.
func UnknownKeys(v *viper.Viper) []string {
	unknown := lo.Without(v.AllKeys(), Keys()...)
	sort.Strings(unknown)
	return unknown
}
