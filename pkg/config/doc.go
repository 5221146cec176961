/*
Package config loads Warden's configuration from the environment.

All knobs live under the WARDEN_ prefix (WARDEN_BOT_TOKEN,
WARDEN_ALERT_CPU_PCT, WARDEN_ISSUANCE_ENABLED, ...). Every key carries
a default; the bot token is the single required value and its absence
is the only fatal startup condition.
*/
package config
