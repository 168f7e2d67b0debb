// Package daemonctl performs the startup privilege drop: chroot into a
// jail directory and drop from root to an unprivileged user/group
// before serving any request.
//
// Platform-specific code lives in a //go:build unix file with a no-op/
// error fallback elsewhere, rather than runtime-checking GOOS.
package daemonctl

// PrivilegeDrop describes the startup jail/user-drop sequence. Any
// field left empty skips that step.
type PrivilegeDrop struct {
	ChrootDir string
	Username  string
	Groupname string
}

// Apply performs the configured chroot and/or uid/gid drop. User and
// group names are resolved before chrooting (chroot makes /etc/passwd
// and /etc/group unreadable), then the root jail is entered, then the
// numeric ids are dropped — group before user, so the process never
// runs with an unprivileged uid but a still-privileged gid.
//
// On non-unix platforms, Apply returns an error if any field is set
// (there is nothing it can safely do), and is a no-op otherwise.
func (p PrivilegeDrop) Apply() error {
	return p.apply()
}
