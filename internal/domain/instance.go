package domain

// Instance describes this server installation. The ID and name are
// generated on first boot and persisted in the instance key store so
// clients can recognize the same server across restarts.
type Instance struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RemoteURL string `json:"remoteUrl,omitempty"`
}
