/*
Package bot is Warden's Telegram boundary.

Client adapts the bot API into the Messenger interface the components
depend on. Bot runs the long-poll update loop, enforces the operator
gate, and dispatches commands (/start /help /status /peers /graph
/speedtest /request /pending) and inline-menu callbacks. Callback
tokens are decoded once into a closed command set; unrecognized tokens
are rejected, not silently dropped. Handler failures are rendered as a
short reply and never reach the update loop.
*/
package bot
