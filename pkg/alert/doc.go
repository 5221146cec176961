/*
Package alert implements Warden's threshold alerting policy.

Each sample is evaluated against configured CPU, memory and network
thresholds; any breach produces one operator notification listing the
tripped conditions with their measured values. A cooldown enforces
minimum spacing between notifications, measured from the last
successful delivery; a failed send never consumes the cooldown.
*/
package alert
