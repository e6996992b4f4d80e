package repo

// StorageError representa falha de leitura ou escrita na persistência.
// Sempre propagado ao chamador; o ciclo de agregação decide o que fazer.
type StorageError struct {
	Op  string // "upsert", "list"
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }
