/*
Package filesystem wraps the file operations used on the music library with
retry logic for NFS stale file handle errors (ESTALE).

Music libraries are frequently mounted over NFS. A file that was replaced on
the server can return ESTALE for a short time; these helpers retry with
exponential backoff and return every other error immediately.

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Retries are counted in the lrcplayer_filesystem_* metrics, labelled with the
volume the path belongs to ("music", "cache", "database"). Call
[SetDefaultVolumeResolver] at startup to enable the labels.
*/
package filesystem
