package config

// ResolveApplySideChannel folds a single repository's [[repositories]]
// side_channel override onto cfg's base side-channel config. Grounded on
// original_source/src/apply.rs's resolve_apply_side_channel call, which
// config.rs's filtered excerpt doesn't itself define.
func ResolveApplySideChannel(cfg Config, repoPath string) SideChannelConfig {
	sc := cfg.SideChannel
	key := canonicalKey(repoPath)

	for _, r := range cfg.Repositories {
		if canonicalKey(r.Path) != key || r.SideChannel == nil {
			continue
		}
		if r.SideChannel.Enabled != nil {
			sc.Enabled = *r.SideChannel.Enabled
		}
		if r.SideChannel.RemoteName != nil {
			sc.RemoteName = *r.SideChannel.RemoteName
		}
		if r.SideChannel.BranchName != nil {
			sc.BranchName = *r.SideChannel.BranchName
		}
		break
	}
	return sc
}
