/*
Package gate enforces Warden's single-operator authorization model.

At most one chat identity administers the daemon. The binding is either
fixed by configuration or claimed by the first chat to issue /start and
then persisted. Commands from any other chat are dropped without a
reply; only the claim command itself tells a stranger the bot is locked.
*/
package gate
