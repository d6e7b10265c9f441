package application

type AddCredentialCommand struct {
	Label     string
	Token     string
	SecretRef string
}
