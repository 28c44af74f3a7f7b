package i18n

var messages = map[string]map[string]string{
	LocaleFR: {
		"success":                         "Succès",
		"error.bad_request":               "Requête invalide",
		"error.unauthorized":              "Authentification requise",
		"error.forbidden":                 "Accès refusé",
		"error.not_found":                 "Ressource introuvable",
		"error.too_many_requests":         "Trop de tentatives, réessayez plus tard",
		"error.internal":                  "Erreur interne du serveur",
		"error.login_invalid":             "Identifiants incorrects",
		"error.token_invalid":             "Session invalide ou expirée",
		"error.signup_failed":             "Inscription impossible",
		"error.backend_unavailable":       "Service indisponible, réessayez plus tard",
		"error.backend_rejected":          "La requête a été refusée",
		"error.product_not_found":         "Produit introuvable",
		"error.quantity_invalid":          "La quantité doit être au moins 1",
		"error.line_index_invalid":        "Ligne introuvable",
		"error.cart_empty":                "Votre panier est vide",
		"error.payment_method_invalid":    "Méthode de paiement invalide",
		"error.payment_reference_missing": "Référence de paiement requise",
		"error.checkout_failed":           "La commande n'a pas pu être validée",
		"error.draft_not_found":           "Brouillon introuvable ou expiré",
		"error.draft_client_missing":      "Client requis",
		"error.draft_type_invalid":        "Type d'action invalide",
		"error.draft_submit_partial":      "Action enregistrée, certaines lignes seront resynchronisées",
		"error.action_not_found":          "Action introuvable",
		"error.resource_invalid":          "Ressource inconnue",
		"error.payload_invalid":           "Données invalides",
		"error.auth_header_missing":       "En-tête Authorization manquant",
		"error.session_expired":           "Session expirée, reconnectez-vous",
		"error.catalog_unavailable":       "Catalogue momentanément indisponible",
		"error.login_too_many":            "Trop de tentatives de connexion, réessayez dans %d secondes",
		"error.rate_limit_unavailable":    "Limitation de débit indisponible",
		"error.password_reset_too_many":   "Trop de demandes de réinitialisation, réessayez dans %d secondes",
		"error.account_not_found":         "Aucun utilisateur trouvé avec cette adresse email.",
		"error.failed_email_not_found":    "Email introuvable",
		"auth.password_reset_sent":        "Un email de réinitialisation a été envoyé",
		"failed_email.updated":            "Statut de l'email mis à jour",
		"failed_email.retried":            "Renvoi de l'email demandé",
		"auth.logged_out":                 "Déconnecté",
		"cart.updated":                    "Panier mis à jour",
		"cart.cleared":                    "Panier vidé",
		"checkout.done":                   "Commande enregistrée",
		"draft.submitted":                 "Action enregistrée",
		"action.approved":                 "Action approuvée",
	},
	LocaleEN: {
		"success":                         "Success",
		"error.bad_request":               "Bad request",
		"error.unauthorized":              "Authentication required",
		"error.forbidden":                 "Access denied",
		"error.not_found":                 "Resource not found",
		"error.too_many_requests":         "Too many attempts, try again later",
		"error.internal":                  "Internal server error",
		"error.login_invalid":             "Invalid credentials",
		"error.token_invalid":             "Invalid or expired session",
		"error.signup_failed":             "Sign-up failed",
		"error.backend_unavailable":       "Service unavailable, try again later",
		"error.backend_rejected":          "The request was rejected",
		"error.product_not_found":         "Product not found",
		"error.quantity_invalid":          "Quantity must be at least 1",
		"error.line_index_invalid":        "Line not found",
		"error.cart_empty":                "Your cart is empty",
		"error.payment_method_invalid":    "Invalid payment method",
		"error.payment_reference_missing": "Payment reference required",
		"error.checkout_failed":           "Checkout failed",
		"error.draft_not_found":           "Draft not found or expired",
		"error.draft_client_missing":      "Client required",
		"error.draft_type_invalid":        "Invalid action type",
		"error.draft_submit_partial":      "Action saved, some lines will be synchronized later",
		"error.action_not_found":          "Action not found",
		"error.resource_invalid":          "Unknown resource",
		"error.payload_invalid":           "Invalid payload",
		"error.auth_header_missing":       "Authorization header missing",
		"error.session_expired":           "Session expired, please sign in again",
		"error.catalog_unavailable":       "Catalog temporarily unavailable",
		"error.login_too_many":            "Too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable":    "Rate limiter unavailable",
		"error.password_reset_too_many":   "Too many reset requests, retry in %d seconds",
		"error.account_not_found":         "No user found with this email address.",
		"error.failed_email_not_found":    "Email not found",
		"auth.password_reset_sent":        "A reset email has been sent",
		"failed_email.updated":            "Email status updated",
		"failed_email.retried":            "Email resend requested",
		"auth.logged_out":                 "Signed out",
		"cart.updated":                    "Cart updated",
		"cart.cleared":                    "Cart cleared",
		"checkout.done":                   "Order placed",
		"draft.submitted":                 "Action saved",
		"action.approved":                 "Action approved",
	},
}
