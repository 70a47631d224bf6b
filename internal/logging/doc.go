// Package logging provides the leveled logger used across lrcplayer.
//
// Messages are written through the standard log package with a level
// prefix ([DEBUG], [INFO], [WARN], [ERROR], [FATAL]). The level comes from
// DEBUG (any truthy value forces debug) or LOG_LEVEL, and can be replaced
// at startup with SetLevel.
package logging
