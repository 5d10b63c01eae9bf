package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

const (
	KeyScanLogged          = "Logged: %s"
	KeyScanFailed          = "Failed to log scan: %s"
	KeyFetchFailed         = "Failed to fetch %s: %s"
	KeyLogsCleared         = "Inventory log cleared."
	KeyClearFailed         = "Failed to clear logs: %s"
	KeyClearForbidden      = "Only a Warehouse Manager can clear the inventory log."
	KeyProductSaved        = "Product %q saved."
	KeyProductSaveFailed   = "Failed to save product: %s"
	KeyProductDeleted      = "Product deleted."
	KeyProductDeleteFailed = "Failed to delete product: %s"
	KeyWelcome             = "Welcome, %s!"
	KeyLoginFailed         = "Login failed: Invalid email or password."
	KeyLoggedOut           = "You have been logged out."
	KeyCameraDenied        = "Camera access was denied. Allow access and retry."
	KeyCameraFailed        = "Failed to start camera: %s"
	KeyCameraStopFailed    = "Camera did not stop cleanly: %s"
)

var supported = []language.Tag{language.English, language.French, language.Italian}

var matcher = language.NewMatcher(supported)

// Match picks the best supported language for the given preferences,
// e.g. an Accept-Language header or a --lang flag.
func Match(prefs ...string) language.Tag {
	tag, _ := language.MatchStrings(matcher, prefs...)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, pairs ...string) {
		for i := 0; i+1 < len(pairs); i += 2 {
			_ = b.SetString(tag, pairs[i], pairs[i+1])
		}
	}

	english := []string{
		KeyScanLogged, KeyScanFailed, KeyFetchFailed, KeyLogsCleared,
		KeyClearFailed, KeyClearForbidden, KeyProductSaved,
		KeyProductSaveFailed, KeyProductDeleted, KeyProductDeleteFailed,
		KeyWelcome, KeyLoginFailed, KeyLoggedOut, KeyCameraDenied,
		KeyCameraFailed, KeyCameraStopFailed,
	}
	for _, k := range english {
		_ = b.SetString(language.English, k, k)
	}

	set(language.French,
		KeyScanLogged, "Enregistré : %s",
		KeyScanFailed, "Échec de l'enregistrement du scan : %s",
		KeyFetchFailed, "Impossible de récupérer %s : %s",
		KeyLogsCleared, "Journal d'inventaire effacé.",
		KeyClearFailed, "Impossible d'effacer le journal : %s",
		KeyClearForbidden, "Seul un responsable d'entrepôt peut effacer le journal d'inventaire.",
		KeyProductSaved, "Produit %q enregistré.",
		KeyProductSaveFailed, "Impossible d'enregistrer le produit : %s",
		KeyProductDeleted, "Produit supprimé.",
		KeyProductDeleteFailed, "Impossible de supprimer le produit : %s",
		KeyWelcome, "Bienvenue, %s !",
		KeyLoginFailed, "Échec de connexion : e-mail ou mot de passe invalide.",
		KeyLoggedOut, "Vous êtes déconnecté.",
		KeyCameraDenied, "Accès à la caméra refusé. Autorisez l'accès puis réessayez.",
		KeyCameraFailed, "Impossible de démarrer la caméra : %s",
		KeyCameraStopFailed, "La caméra ne s'est pas arrêtée proprement : %s",
	)
	set(language.Italian,
		KeyScanLogged, "Registrato: %s",
		KeyScanFailed, "Registrazione della scansione non riuscita: %s",
		KeyFetchFailed, "Impossibile recuperare %s: %s",
		KeyLogsCleared, "Registro inventario cancellato.",
		KeyClearFailed, "Impossibile cancellare il registro: %s",
		KeyClearForbidden, "Solo un responsabile di magazzino può cancellare il registro inventario.",
		KeyProductSaved, "Prodotto %q salvato.",
		KeyProductSaveFailed, "Impossibile salvare il prodotto: %s",
		KeyProductDeleted, "Prodotto eliminato.",
		KeyProductDeleteFailed, "Impossibile eliminare il prodotto: %s",
		KeyWelcome, "Benvenuto, %s!",
		KeyLoginFailed, "Accesso non riuscito: e-mail o password non validi.",
		KeyLoggedOut, "Sei stato disconnesso.",
		KeyCameraDenied, "Accesso alla fotocamera negato. Consenti l'accesso e riprova.",
		KeyCameraFailed, "Impossibile avviare la fotocamera: %s",
		KeyCameraStopFailed, "La fotocamera non si è arrestata correttamente: %s",
	)
	return b
}
