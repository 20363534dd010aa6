package config

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	logx "remindd/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections,
// (2) safe structured attrs for logging (never includes secrets like the
// telegram token), and (3) the IDs of reminder slots that were added,
// removed, or modified.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 16)

	// Logging
	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Runtime
	if !reflect.DeepEqual(oldCfg.Runtime, newCfg.Runtime) {
		changed = append(changed, "runtime")
		attrs = append(attrs,
			logx.Int("runtime.workers", newCfg.Runtime.Workers),
			logx.String("runtime.timezone", strings.TrimSpace(newCfg.Runtime.Timezone)),
			logx.Int("runtime.retry_max", newCfg.Runtime.RetryMax),
		)
	}

	// Storage. Nil means disabled; only compare the observable knobs.
	var oDriver, nDriver, oBusy, nBusy string
	var oPathSet, nPathSet bool
	if oldCfg.Storage != nil {
		oDriver = strings.TrimSpace(oldCfg.Storage.Driver)
		oBusy = strings.TrimSpace(oldCfg.Storage.BusyTimeout)
		oPathSet = strings.TrimSpace(oldCfg.Storage.Path) != ""
	}
	if newCfg.Storage != nil {
		nDriver = strings.TrimSpace(newCfg.Storage.Driver)
		nBusy = strings.TrimSpace(newCfg.Storage.BusyTimeout)
		nPathSet = strings.TrimSpace(newCfg.Storage.Path) != ""
	}
	if oDriver != nDriver || oBusy != nBusy || oPathSet != nPathSet {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", nDriver),
			logx.Bool("storage.path_set", nPathSet),
		)
	}

	// Notify (never log the token)
	if notifyChanged(oldCfg.Notify, newCfg.Notify) {
		changed = append(changed, "notify")
		backend := ""
		if newCfg.Notify != nil {
			backend = strings.TrimSpace(newCfg.Notify.Backend)
		}
		tokenSet := newCfg.Notify != nil && newCfg.Notify.Telegram != nil &&
			strings.TrimSpace(newCfg.Notify.Telegram.Token) != ""
		attrs = append(attrs,
			logx.String("notify.backend", backend),
			logx.Bool("notify.telegram_token_set", tokenSet),
		)
	}

	// Reminders: report per-slot changes by ID.
	reminderChanged := diffReminders(oldCfg.Reminders, newCfg.Reminders)
	if len(reminderChanged) > 0 {
		changed = append(changed, "reminders")
		attrs = append(attrs,
			logx.Int("reminders.changed_count", len(reminderChanged)),
			logx.Int("reminders.total", len(newCfg.Reminders)),
		)
	}

	sort.Strings(changed)
	return changed, attrs, reminderChanged
}

func notifyChanged(o, n *NotifyConfig) bool {
	if (o == nil) != (n == nil) {
		return true
	}
	if o == nil {
		return false
	}
	// Token changes matter but must not leak; compare set-ness plus value.
	return !reflect.DeepEqual(*o, *n)
}

func diffReminders(oldR, newR []ReminderConfig) []string {
	byID := func(list []ReminderConfig) map[string]ReminderConfig {
		m := make(map[string]ReminderConfig, len(list))
		for _, r := range list {
			m[strings.TrimSpace(r.ID)] = r
		}
		return m
	}
	oldM := byID(oldR)
	newM := byID(newR)

	set := map[string]struct{}{}
	for id := range oldM {
		set[id] = struct{}{}
	}
	for id := range newM {
		set[id] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for id := range set {
		o, inOld := oldM[id]
		n, inNew := newM[id]
		if !inOld || !inNew {
			out = append(out, id)
			continue
		}
		if reminderHash(o) != reminderHash(n) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func reminderHash(r ReminderConfig) uint64 {
	b, err := json.Marshal(r)
	if err != nil {
		return 0
	}
	return hashBytes(b)
}
